package node

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/caspercreds/go-deploy/internal/deploy"
)

// Client is the node's remote-call interface as the gateway consumes it.
type Client interface {
	// PutDeploy submits a signed deploy via the typed client path.
	PutDeploy(ctx context.Context, d *deploy.Deploy) (string, error)

	// RawPutDeploy submits via a hand-built JSON-RPC envelope, independent
	// of the typed client's encoding.
	RawPutDeploy(ctx context.Context, d *deploy.Deploy) (string, error)

	// DeployStatus queries execution results for a deploy hash.
	DeployStatus(ctx context.Context, deployHash string) (*DeployStatus, error)

	Close()
}

// client wraps JSON-RPC connections to one or more node URLs with failover:
// a dead endpoint rotates to the next on use rather than failing the call.
type client struct {
	urls []string
	rpcs []*rpc.Client
	raw  *rawCaller

	mu      sync.RWMutex
	current int
}

// NewClient connects to the given node URLs. Endpoints that refuse the
// initial dial are kept in rotation and retried on use.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewClient(urls []string) (Client, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one node URL is required")
	}

	rpcs := make([]*rpc.Client, len(urls))
	healthy := 0
	for i, url := range urls {
		c, err := rpc.Dial(url)
		if err != nil {
			log.Warn().
				Str("url", url).
				Err(err).
				Msg("Failed to connect to node, will retry on use")
			continue
		}
		rpcs[i] = c
		healthy++
	}
	if healthy == 0 {
		return nil, errors.New("failed to connect to any node")
	}

	return &client{
		urls: urls,
		rpcs: rpcs,
		raw:  newRawCaller(urls),
	}, nil
}

func (c *client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.rpcs {
		if r != nil {
			r.Close()
		}
	}
}

// getRPC returns the current connection, redialing or rotating as needed.
func (c *client) getRPC() (*rpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for range c.rpcs {
		if r := c.rpcs[c.current]; r != nil {
			return r, nil
		}
		redialed, err := rpc.Dial(c.urls[c.current])
		if err == nil {
			c.rpcs[c.current] = redialed
			return redialed, nil
		}
		log.Warn().
			Str("url", c.urls[c.current]).
			Err(err).
			Msg("Node endpoint still unreachable, rotating")
		c.current = (c.current + 1) % len(c.rpcs)
	}
	return nil, errors.New("no reachable node endpoint")
}

// rotate moves to the next endpoint after a transport failure.
func (c *client) rotate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = (c.current + 1) % len(c.rpcs)
}

func (c *client) PutDeploy(ctx context.Context, d *deploy.Deploy) (string, error) {
	conn, err := c.getRPC()
	if err != nil {
		return "", err
	}

	var result putDeployResult
	if err := conn.CallContext(ctx, &result, MethodPutDeploy, d); err != nil {
		if translated := translateRPCError(err); translated != nil {
			return "", translated
		}
		c.rotate()
		return "", errors.Wrap(err, "typed put_deploy call")
	}
	if result.DeployHash == "" {
		return "", errors.New("node accepted deploy but returned no hash")
	}
	return result.DeployHash, nil
}

func (c *client) RawPutDeploy(ctx context.Context, d *deploy.Deploy) (string, error) {
	return c.raw.putDeploy(ctx, d)
}

func (c *client) DeployStatus(ctx context.Context, deployHash string) (*DeployStatus, error) {
	conn, err := c.getRPC()
	if err != nil {
		return nil, err
	}

	var status DeployStatus
	if err := conn.CallContext(ctx, &status, MethodGetDeploy, deployHash); err != nil {
		if translated := translateRPCError(err); translated != nil {
			return nil, translated
		}
		c.rotate()
		return nil, errors.Wrap(err, "get_deploy call")
	}
	return &status, nil
}

// translateRPCError maps a node-side JSON-RPC error into *RPCError and
// returns nil for transport-level failures.
func translateRPCError(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return &RPCError{Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
	}
	return nil
}
