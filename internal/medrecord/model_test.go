package medrecord

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRecordJSONVisitDateOnly(t *testing.T) {
	r := Record{
		ID:        "rec-1",
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		VisitDate: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}

	for _, v := range []interface{}{r, &r} {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !strings.Contains(string(data), `"visit_date":"2026-08-31"`) {
			t.Errorf("visit_date not date-only: %s", data)
		}
	}
}
