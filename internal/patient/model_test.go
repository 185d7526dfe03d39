package patient

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPatientJSONDateOnly(t *testing.T) {
	p := Patient{
		ID:          "pat-1",
		FirstName:   "Ama",
		LastName:    "Mensah",
		DateOfBirth: time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC),
	}

	// Both value and pointer must render the same wire format.
	for _, v := range []interface{}{p, &p} {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !strings.Contains(string(data), `"date_of_birth":"1990-05-10"`) {
			t.Errorf("date_of_birth not date-only: %s", data)
		}
	}
}
