package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/metrics"
	"github.com/mesikahq/clinic-core/internal/middleware"
)

type Router struct {
	handler        *Handler
	authMiddleware *auth.Middleware
	metrics        *metrics.Metrics
	ratePerSecond  float64
	rateBurst      int
}

func NewRouter(handler *Handler, authService auth.Service, m *metrics.Metrics, ratePerSecond float64, rateBurst int) *Router {
	if ratePerSecond <= 0 {
		ratePerSecond = 30
	}
	if rateBurst <= 0 {
		rateBurst = 30
	}
	return &Router{
		handler:        handler,
		authMiddleware: auth.NewMiddleware(authService),
		metrics:        m,
		ratePerSecond:  ratePerSecond,
		rateBurst:      rateBurst,
	}
}

func (r *Router) SetupRouter(logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.SecurityHeaders(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.Metrics(r.metrics),
		middleware.RateLimit(rate.Limit(r.ratePerSecond), r.rateBurst),
		middleware.CORS(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().UTC()})
	})
	router.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	api := router.Group("/api")
	{
		api.POST("/auth/login", r.handler.Login)

		protected := api.Group("")
		protected.Use(r.authMiddleware.RequireRoles())
		{
			users := protected.Group("/users")
			{
				users.POST("", r.authMiddleware.RequireRoles(auth.RoleAdmin), r.handler.CreateUser)
				users.GET("", r.authMiddleware.RequireRoles(auth.RoleAdmin), r.handler.ListUsers)
			}

			patients := protected.Group("/patients")
			{
				patients.POST("", r.handler.RegisterPatient)
				patients.GET("", r.handler.ListPatients)
				patients.GET("/:id", r.handler.GetPatient)
			}

			queueGroup := protected.Group("/queue")
			{
				queueGroup.POST("", r.handler.CreateQueueEntry)
				queueGroup.GET("", r.handler.ListQueue)
				queueGroup.PUT("/:id/status", r.handler.UpdateQueueStatus)
			}

			records := protected.Group("/medical-records")
			{
				records.POST("", r.handler.CreateMedicalRecord)
				records.GET("", r.handler.ListMedicalRecords)
				records.GET("/:id", r.handler.GetMedicalRecord)
			}

			labTests := protected.Group("/lab-tests")
			{
				labTests.POST("", r.handler.CreateLabTest)
				labTests.GET("", r.handler.ListLabTests)
				labTests.PUT("/:id", r.handler.UpdateLabTest)
			}

			radiology := protected.Group("/radiology-exams")
			{
				radiology.POST("", r.handler.CreateRadiologyExam)
				radiology.GET("", r.handler.ListRadiologyExams)
				radiology.PUT("/:id", r.handler.UpdateRadiologyExam)
			}

			medications := protected.Group("/medications")
			{
				medications.POST("", r.handler.CreateMedication)
				medications.GET("", r.handler.ListMedications)
				medications.PUT("/:id/stock", r.handler.UpdateMedicationStock)
			}

			prescriptions := protected.Group("/prescriptions")
			{
				prescriptions.POST("", r.handler.CreatePrescription)
				prescriptions.GET("", r.handler.ListPrescriptions)
				prescriptions.POST("/:id/dispense", r.handler.DispensePrescription)
			}

			services := protected.Group("/services")
			{
				services.POST("", r.handler.CreateService)
				services.GET("", r.handler.ListServices)
			}

			invoices := protected.Group("/invoices")
			{
				invoices.POST("", r.handler.CreateInvoice)
				invoices.GET("", r.handler.ListInvoices)
				invoices.POST("/:id/payment", r.handler.ProcessPayment)
			}

			reports := protected.Group("/reports")
			{
				reports.POST("", r.handler.GenerateReport)
				reports.GET("", r.handler.ListReports)
			}

			protected.GET("/dashboard/stats", r.handler.GetDashboardStats)
		}
	}

	return router
}
