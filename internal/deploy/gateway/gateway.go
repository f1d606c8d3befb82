// Package gateway submits signed deploys to the node and polls for their
// execution outcome.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/node"
	"github/caspercreds/go-deploy/internal/metrics"
)

// DefaultPollInterval is how often AwaitOutcome queries the node.
const DefaultPollInterval = 5 * time.Second

// NodeRejectedError surfaces a node-side rejection verbatim. It is never
// retried: the deploy's timestamp/TTL window may have lapsed, so a blind
// retry risks double-submission semantics. Callers must build a fresh deploy.
type NodeRejectedError struct {
	Code    int
	Message string
}

func (e *NodeRejectedError) Error() string {
	return fmt.Sprintf("deploy rejected by node (code %d): %s", e.Code, e.Message)
}

// Service is the submission gateway.
type Service interface {
	// Submit sends a signed deploy and returns the network-assigned hash.
	Submit(ctx context.Context, d *deploy.Deploy) (string, error)

	// AwaitOutcome polls for an execution result until terminal or timeout.
	// Returns (success, nil) on a terminal result and (false, nil) on
	// timeout; the timeout is advisory and does not cancel the submission.
	AwaitOutcome(ctx context.Context, deployHash string, timeout time.Duration) (bool, error)
}

type service struct {
	client       node.Client
	pollInterval time.Duration
}

// Option configures the gateway service.
type Option func(*service)

// WithPollInterval overrides the outcome poll interval.
func WithPollInterval(interval time.Duration) Option {
	return func(s *service) {
		s.pollInterval = interval
	}
}

// NewService creates a submission gateway over a node client.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(client node.Client, opts ...Option) Service {
	s := &service{
		client:       client,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit tries the typed client call first; a structural failure of that
// path (encoding mismatch, transport refusal) falls back to the raw
// JSON-RPC envelope. A node rejection on either path is final.
func (s *service) Submit(ctx context.Context, d *deploy.Deploy) (string, error) {
	if d == nil || len(d.Approvals) == 0 {
		return "", errors.New("deploy carries no approvals")
	}
	logger := log.With().
		Str("component", "submission_gateway").
		Str("deploy_hash", d.Hash).
		Logger()

	hash, err := s.client.PutDeploy(ctx, d)
	if err == nil {
		metrics.Submissions.WithLabelValues("typed", "accepted").Inc()
		logger.Info().Str("assigned_hash", hash).Msg("Deploy accepted by node")
		return hash, nil
	}

	var rpcErr *node.RPCError
	if errors.As(err, &rpcErr) {
		metrics.Submissions.WithLabelValues("typed", "rejected").Inc()
		return "", &NodeRejectedError{Code: rpcErr.Code, Message: rpcErr.Message}
	}

	metrics.Submissions.WithLabelValues("typed", "error").Inc()
	logger.Warn().Err(err).Msg("Typed submission path failed, retrying via raw envelope")

	hash, err = s.client.RawPutDeploy(ctx, d)
	if err == nil {
		metrics.Submissions.WithLabelValues("raw", "accepted").Inc()
		logger.Info().Str("assigned_hash", hash).Msg("Deploy accepted by node via raw envelope")
		return hash, nil
	}
	if errors.As(err, &rpcErr) {
		metrics.Submissions.WithLabelValues("raw", "rejected").Inc()
		return "", &NodeRejectedError{Code: rpcErr.Code, Message: rpcErr.Message}
	}
	metrics.Submissions.WithLabelValues("raw", "error").Inc()
	return "", errors.Wrap(err, "deploy submission failed on both paths")
}

func (s *service) AwaitOutcome(ctx context.Context, deployHash string, timeout time.Duration) (bool, error) {
	logger := log.With().
		Str("component", "submission_gateway").
		Str("deploy_hash", deployHash).
		Logger()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		status, err := s.client.DeployStatus(ctx, deployHash)
		if err != nil {
			// polling is best-effort; the submission already committed
			logger.Warn().Err(err).Msg("Deploy status poll failed")
		} else if status.Terminal() {
			success := status.Succeeded()
			logger.Info().Bool("success", success).Msg("Deploy reached terminal state")
			return success, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			logger.Info().Dur("timeout", timeout).Msg("Deploy outcome still pending at timeout")
			return false, nil
		case <-ticker.C:
		}
	}
}
