package app

import (
	"fmt"
	"time"

	"github.com/shokrpour/thesisflow/internal/audit"
	"github.com/shokrpour/thesisflow/internal/catalog"
	"github.com/shokrpour/thesisflow/internal/defense"
	"github.com/shokrpour/thesisflow/internal/directory"
	"github.com/shokrpour/thesisflow/internal/grading"
	"github.com/shokrpour/thesisflow/internal/policy"
	"github.com/shokrpour/thesisflow/internal/store"
	"github.com/shokrpour/thesisflow/internal/store/jsonfile"
	"github.com/shokrpour/thesisflow/internal/thesis"
	"github.com/shokrpour/thesisflow/internal/upload"
)

// Service wires the whole system together from one config file.
type Service struct {
	Config    *Config
	Stores    *store.Stores
	Directory *directory.Service
	Catalog   *catalog.Service
	Policy    *policy.Service
	Thesis    *thesis.Workflow
	Defense   *defense.Workflow
	Grading   *grading.Service
	Uploads   *upload.Service
	Sessions  *SessionManager

	auditStore *audit.Store
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := jsonfile.EnsureDataFiles(config.Storage.DataDir); err != nil {
		return nil, fmt.Errorf("failed to init data files: %w", err)
	}
	stores := jsonfile.OpenStores(config.Storage.DataDir)

	var recorder audit.Recorder = audit.Nop{}
	var auditStore *audit.Store
	if config.Database.AuditDSN != "" {
		auditStore, err = audit.Open(config.Database.AuditDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		recorder = auditStore
	}

	var hasher directory.Hasher = directory.SHA256Hasher{}
	switch config.Security.Hasher {
	case "sha256":
	case "bcrypt":
		hasher = directory.BcryptHasher{}
	default:
		return nil, fmt.Errorf("unknown hasher %q, want sha256 or bcrypt", config.Security.Hasher)
	}

	sessions, err := NewSessionManager(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}

	caps := policy.Caps{
		Guidance: config.Policy.GuidanceCap,
		Review:   config.Policy.ReviewCap,
	}
	coolingOff := time.Duration(config.Workflow.CoolingOffMinutes) * time.Minute

	cat := catalog.New(stores.Courses)
	pol := policy.New(stores.ThesisRequests, stores.DefenseRequests, caps)
	thesisWF := thesis.New(stores, cat, pol, recorder)

	return &Service{
		Config:     config,
		Stores:     stores,
		Directory:  directory.New(stores, hasher),
		Catalog:    cat,
		Policy:     pol,
		Thesis:     thesisWF,
		Defense:    defense.New(stores, thesisWF, pol, recorder, coolingOff),
		Grading:    grading.New(stores.DefenseRequests, recorder),
		Uploads:    upload.New(config.Storage.UploadDir),
		Sessions:   sessions,
		auditStore: auditStore,
	}, nil
}

func (s *Service) Close() error {
	var errs []error

	if s.auditStore != nil {
		if err := s.auditStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("audit: %w", err))
		}
	}
	if err := s.Sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("sessions: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
