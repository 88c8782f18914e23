package services

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"model-mirror-service/internal/core/domain"
	output "model-mirror-service/internal/core/ports/output"
)

const (
	maxSessionNameLen         = 64
	DefaultResolveConcurrency = 8
)

var sessionNameInvalid = regexp.MustCompile(`[^\w+=,.@-]`)

type MirrorOptions struct {
	SessionPrefix string
	// ResolveConcurrency bounds concurrent training job lookups per listing.
	ResolveConcurrency int
}

// MirrorService discovers models in a delegated account and mirrors them into
// the destination store. Each call assumes the role afresh; no credential or
// source client outlives the call that created it.
type MirrorService struct {
	broker        output.CredentialBroker
	sources       output.SourceAccountFactory
	dest          output.DestinationStore
	scanner       *CatalogScanner
	resolver      *ModelInfoResolver
	executor      *TransferExecutor
	sessionPrefix string
	concurrency   int
}

func NewMirrorService(
	broker output.CredentialBroker,
	sources output.SourceAccountFactory,
	dest output.DestinationStore,
	scanner *CatalogScanner,
	resolver *ModelInfoResolver,
	executor *TransferExecutor,
	opts MirrorOptions,
) *MirrorService {
	if opts.SessionPrefix == "" {
		opts.SessionPrefix = "model-mirror"
	}
	if opts.ResolveConcurrency <= 0 {
		opts.ResolveConcurrency = DefaultResolveConcurrency
	}
	return &MirrorService{
		broker:        broker,
		sources:       sources,
		dest:          dest,
		scanner:       scanner,
		resolver:      resolver,
		executor:      executor,
		sessionPrefix: opts.SessionPrefix,
		concurrency:   opts.ResolveConcurrency,
	}
}

// ListModels returns the de-duplicated models of the role's account in region,
// sorted by logical name.
func (s *MirrorService) ListModels(ctx context.Context, role domain.RoleReference, region string) ([]domain.ModelDescriptor, error) {
	if region == "" {
		return nil, domain.ErrMissingRegion
	}

	source, err := s.open(ctx, role, region)
	if err != nil {
		return nil, err
	}

	found, err := s.resolveAll(ctx, source, role, region)
	if err != nil {
		return nil, err
	}

	models := Reduce(found)
	log.WithFields(log.Fields{
		"account":    role.AccountID,
		"region":     region,
		"candidates": len(found),
		"models":     len(models),
	}).Info("listed models")
	return models, nil
}

type candidate struct {
	desc domain.ModelDescriptor
	ok   bool
}

// resolveAll resolves every scanned artifact, at most s.concurrency at a time.
// Results keep scan order. Candidates with unusable metadata are skipped; any
// other failure cancels the remaining lookups.
func (s *MirrorService) resolveAll(ctx context.Context, source output.SourceAccount, role domain.RoleReference, region string) ([]domain.ModelDescriptor, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	var slots []*candidate
	var scanErr error
	for loc, err := range s.scanner.Scan(gctx, source) {
		if err != nil {
			scanErr = err
			break
		}
		if gctx.Err() != nil {
			break
		}

		logger := log.WithField("artifact", loc.URI())
		jobID, err := loc.JobIdentifier()
		if err != nil {
			logger.WithError(err).Warn("skipping artifact")
			continue
		}

		slot := &candidate{}
		slots = append(slots, slot)
		g.Go(func() error {
			desc, err := s.resolver.Resolve(gctx, source, s.dest, jobID, region, role.AccountID, ResolveOptions{Artifact: &loc})
			if errors.Is(err, domain.ErrValidation) {
				logger.WithError(err).Warn("skipping artifact with unexpected training job metadata")
				return nil
			}
			if err != nil {
				return err
			}
			slot.desc, slot.ok = desc, true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, SanitizeError(err, role)
	}
	if scanErr != nil {
		return nil, SanitizeError(scanErr, role)
	}

	found := make([]domain.ModelDescriptor, 0, len(slots))
	for _, slot := range slots {
		if slot.ok {
			found = append(found, slot.desc)
		}
	}
	return found, nil
}

// Transfer resolves req's training job and applies its action.
func (s *MirrorService) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferOutcome, error) {
	if err := req.Validate(); err != nil {
		return domain.TransferOutcome{}, err
	}

	source, err := s.open(ctx, req.Role, req.Region)
	if err != nil {
		return domain.TransferOutcome{}, err
	}

	// Execute checks the destination itself.
	desc, err := s.resolver.Resolve(ctx, source, s.dest, req.JobIdentifier, req.Region, req.Role.AccountID, ResolveOptions{SkipExistence: true})
	if err != nil {
		return domain.TransferOutcome{}, SanitizeError(err, req.Role)
	}

	outcome, err := s.executor.Execute(ctx, source, s.dest, desc, req.Action)
	if err != nil {
		return domain.TransferOutcome{}, SanitizeError(err, req.Role)
	}

	log.WithFields(log.Fields{
		"job":     req.JobIdentifier,
		"action":  req.Action,
		"state":   outcome.State,
		"changed": outcome.Changed(),
	}).Info("transfer finished")
	return outcome, nil
}

// open assumes role and binds a source client to the resulting credential.
func (s *MirrorService) open(ctx context.Context, role domain.RoleReference, region string) (output.SourceAccount, error) {
	log.WithField("role", role.ARN).Info("assuming role")
	cred, err := s.broker.AssumeRole(ctx, role, s.sessionName())
	if err != nil {
		return nil, SanitizeError(err, role)
	}

	source, err := s.sources.ForCredential(ctx, cred, region)
	if err != nil {
		return nil, SanitizeError(err, role)
	}
	return source, nil
}

func (s *MirrorService) sessionName() string {
	name := sessionNameInvalid.ReplaceAllString(s.sessionPrefix, "-") + "-" + uuid.NewString()
	if len(name) > maxSessionNameLen {
		name = name[len(name)-maxSessionNameLen:]
	}
	return name
}
