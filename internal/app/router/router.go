package router

import (
	"context"

	"repayment-worker/internal/app/handlers"
	"repayment-worker/internal/pkg/config"
	"repayment-worker/internal/pkg/db/mongo"
	"repayment-worker/internal/pkg/kafka"
	"repayment-worker/internal/service"
	"repayment-worker/internal/service/repayment"

	"github.com/gin-gonic/gin"
)

func SetupRouter(ctx context.Context, mongoClient *mongo.MongoClient,
	kafkaProducer *kafka.KafkaProducer, repaymentService repayment.RepaymentServiceInterface,
	cfg config.AuditRepublishConfig) *gin.Engine {
	server := gin.Default()

	healthCheckHandler := handlers.NewHealthCheckHandler()
	server.GET("/IntegrationServices/Lending/RepaymentWorkerService/HealthCheck", healthCheckHandler.HealthCheck)

	repaymentHandler := handlers.NewRepaymentHandler(repaymentService)
	server.POST("/IntegrationServices/Lending/RepaymentWorkerService/loans/:loanId/repayments", repaymentHandler.PostRepayment)
	server.GET("/IntegrationServices/Lending/RepaymentWorkerService/loans/:loanId/ledger", repaymentHandler.GetLedger)

	auditRepublishService := service.NewAuditRepublishService(mongoClient, kafkaProducer, cfg)
	auditRepublishHandler := handlers.NewAuditRepublishHandler(auditRepublishService)
	server.GET("/IntegrationServices/Lending/AuditRepublish", auditRepublishHandler.RepublishAuditMessages)

	return server
}
