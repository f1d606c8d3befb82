// Package node speaks JSON-RPC 2.0 to a network node. It offers a typed
// client path and a deliberately independent raw-envelope path the gateway
// can fall back to.
package node

import "fmt"

// Method names exposed by the node's remote-call interface.
const (
	MethodPutDeploy = "account_put_deploy"
	MethodGetDeploy = "info_get_deploy"
)

// RPCError is a node-side rejection, carried verbatim from the JSON-RPC
// error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("node rejected request (code %d): %s", e.Code, e.Message)
}

// putDeployResult is the account_put_deploy response body.
type putDeployResult struct {
	DeployHash string `json:"deploy_hash"`
}

// ExecutionResult is one block's verdict on a deploy.
type ExecutionResult struct {
	BlockHash string `json:"block_hash"`
	Success   bool   `json:"success"`
	Error     string `json:"error_message,omitempty"`
}

// DeployStatus is the info_get_deploy response reduced to what the gateway
// polls for: execution results appear once the deploy reaches a block.
type DeployStatus struct {
	DeployHash       string            `json:"deploy_hash"`
	ExecutionResults []ExecutionResult `json:"execution_results"`
}

// Terminal reports whether the node has reached a verdict.
func (s *DeployStatus) Terminal() bool {
	return s != nil && len(s.ExecutionResults) > 0
}

// Succeeded reports whether every observed execution result succeeded.
// Only meaningful once Terminal.
func (s *DeployStatus) Succeeded() bool {
	if !s.Terminal() {
		return false
	}
	for _, r := range s.ExecutionResults {
		if !r.Success {
			return false
		}
	}
	return true
}
