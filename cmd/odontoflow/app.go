package main

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	v1 "github.com/dmehra2102/prod-golang-projects/odontoflow/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/seed"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/service"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the wired services for one process.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Collector
	db      *gorm.DB

	users    service.UserRepository
	patients patient.Repository
	audit    *service.AuditService
	jwt      *auth.JWTManager

	authSvc    *service.AuthService
	patientSvc *service.PatientService
	historySvc *service.HistoryService
	odontogram *service.OdontogramService
	review     *service.ReviewService
	exports    *service.ExportService
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.NewCollector(cfg.App.Name),
	}

	var auditRepo service.AuditRepository
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.Connect(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.users = postgres.NewUserRepository(db)
		a.patients = postgres.NewPatientRepository(db)
		auditRepo = postgres.NewAuditRepository(db)
	default:
		a.users = memory.NewUserRepository()
		a.patients = memory.NewPatientRepository()
		auditRepo = memory.NewAuditRepository()
	}
	log.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	a.audit = service.NewAuditService(auditRepo, log.Named("audit"), a.metrics, cfg.Audit.BufferSize)
	a.jwt = auth.NewJWTManager(cfg.JWT)

	a.authSvc = service.NewAuthService(a.users, a.jwt, a.audit, a.metrics, log)
	a.patientSvc = service.NewPatientService(a.patients, a.audit, a.metrics, log)
	a.historySvc = service.NewHistoryService(a.patients, a.audit, a.metrics, log)
	a.odontogram = service.NewOdontogramService(a.patients, service.NewToolBox(), a.audit, a.metrics, log)
	a.review = service.NewReviewService(a.patients, a.audit, a.metrics, log)
	a.exports = service.NewExportService(a.patients, a.audit, a.metrics, log)

	return a, nil
}

func (a *app) migrate() error {
	if a.db == nil {
		return fmt.Errorf("migrate requires STORAGE_DRIVER=%s", config.StoragePostgres)
	}
	return database.Migrate(a.db, a.log)
}

func (a *app) seed(ctx context.Context) error {
	res, err := seed.Run(ctx, a.users, a.patients, a.log, seed.Options{})
	if err != nil {
		return err
	}
	a.log.Info("seed completed", zap.Int("users", res.Users), zap.Int("patients", res.Patients))
	return nil
}

func (a *app) deps() v1.Deps {
	return v1.Deps{
		Config:     a.cfg,
		Log:        a.log,
		Metrics:    a.metrics,
		JWT:        a.jwt,
		Auth:       a.authSvc,
		Patients:   a.patientSvc,
		Histories:  a.historySvc,
		Odontogram: a.odontogram,
		Review:     a.review,
		Exports:    a.exports,
	}
}

// close flushes the audit trail before releasing the database.
func (a *app) close() {
	a.audit.Shutdown()
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.log.Warn("closing database", zap.Error(err))
		}
	}
}
