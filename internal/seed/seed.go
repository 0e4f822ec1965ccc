// Package seed loads the demo clinic: one student, one professor and two
// patients. Running it twice is a no-op.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	StudentEmail   = "estudiante@odontotess.com"
	ProfessorEmail = "profesor@odontotess.com"
	Password       = "password123"
)

// namespace derives stable ids so re-seeding finds the same rows.
var namespace = uuid.MustParse("5b0f6c1e-3f4a-4c8e-9a57-0d0f1a2b3c4d")

func ID(name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(name))
}

type Options struct {
	Now      time.Time
	HashCost int
}

type Result struct {
	Users    int
	Patients int
}

func Run(ctx context.Context, users service.UserRepository, patients patient.Repository, log *zap.Logger, opts Options) (Result, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}

	var res Result
	log.Info("seeding demo data")

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), opts.HashCost)
	if err != nil {
		return res, fmt.Errorf("hashing seed password: %w", err)
	}

	for _, u := range []domain.User{
		{ID: ID(StudentEmail), Email: StudentEmail, FullName: "Juan Pérez Estudiante", Role: domain.RoleStudent},
		{ID: ID(ProfessorEmail), Email: ProfessorEmail, FullName: "Dra. Ana García", Role: domain.RoleProfessor},
	} {
		u.PasswordHash = string(hash)
		switch err := users.Create(ctx, &u); {
		case errors.Is(err, domain.ErrEmailTaken):
			log.Debug("seed user exists", zap.String("email", u.Email))
		case err != nil:
			return res, fmt.Errorf("seeding user %s: %w", u.Email, err)
		default:
			res.Users++
			log.Info("seed user created", zap.String("email", u.Email), zap.String("role", string(u.Role)))
		}
	}

	demo, err := demoPatients(opts.Now)
	if err != nil {
		return res, err
	}
	for _, p := range demo {
		switch err := patients.Create(ctx, p); {
		case errors.Is(err, patient.ErrPatientAlreadyExists):
			log.Debug("seed patient exists", zap.String("nombre", p.Name))
		case err != nil:
			return res, fmt.Errorf("seeding patient %s: %w", p.Name, err)
		default:
			res.Patients++
			log.Info("seed patient created", zap.String("nombre", p.Name), zap.String("status", string(p.Status)))
		}
	}

	return res, nil
}

func demoPatients(now time.Time) ([]*patient.Patient, error) {
	const owner = "Juan Pérez Estudiante"
	reason := []string{history.SectionCurrentCondition, "motivo_consulta"}

	ana := patient.New("Ana Torres", 34, StudentEmail, owner, now)
	ana.ID = ID("patient:ana-torres")
	if err := ana.History.SetString(reason, "Revisión general y limpieza."); err != nil {
		return nil, err
	}
	if _, err := ana.History.ToggleSurface("16", history.SurfaceOcclusal, history.ToolCaries); err != nil {
		return nil, err
	}
	if _, err := ana.History.ToggleMissing("36"); err != nil {
		return nil, err
	}

	carlos := patient.New("Carlos Ruiz", 52, StudentEmail, owner, now)
	carlos.ID = ID("patient:carlos-ruiz")
	if err := carlos.History.SetString(reason, "Dolor en molar superior derecho."); err != nil {
		return nil, err
	}
	if err := carlos.Submit(); err != nil {
		return nil, fmt.Errorf("submitting seed patient: %w", err)
	}

	return []*patient.Patient{ana, carlos}, nil
}
