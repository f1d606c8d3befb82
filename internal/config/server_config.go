package config

import (
	"strings"
	"time"

	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

// EchoServer holds the HTTP listener settings.
type EchoServer struct {
	ListenAddress                  string
	HideInternalServerErrorDetails bool
	EnableMetricsMiddleware        bool
}

// LoggerServer holds logging settings.
type LoggerServer struct {
	Level              string
	PrettyPrintConsole bool
}

// NodeServer holds the network-node connection settings.
type NodeServer struct {
	// URLs are JSON-RPC endpoints, first healthy one wins, comma separated
	// in the environment.
	URLs []string

	// ChainName is the target network; deploys naming a different chain are
	// warned about but still signed.
	ChainName string

	RequestTimeout time.Duration
}

// SigningServer holds deploy-construction and provider settings.
type SigningServer struct {
	// ContractHash is the credential contract the CLI builds deploys for.
	ContractHash string

	// PaymentMotes funds the standard payment of built deploys.
	PaymentMotes uint64

	TTL      time.Duration
	GasPrice uint64

	// BridgeURL, when set, plugs a JSON-RPC signer bridge into the provider
	// chain's wallet slot.
	BridgeURL string

	// LocalKeyPath, when set, plugs a local ed25519 key file in instead.
	LocalKeyPath string

	AwaitTimeout time.Duration
	PollInterval time.Duration
}

// Server is the full service configuration.
type Server struct {
	Echo    EchoServer
	Logger  LoggerServer
	Node    NodeServer
	Signing SigningServer
}

// DefaultServiceConfigFromEnv returns the service config as parsed from the
// environment, with defaults suitable for local development against the
// testnet.
func DefaultServiceConfigFromEnv() Server {
	v := viper.New()
	v.SetEnvPrefix("CREDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("echo.listen_address", ":8080")
	v.SetDefault("echo.hide_internal_server_error_details", true)
	v.SetDefault("echo.enable_metrics_middleware", true)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.pretty_print_console", false)

	v.SetDefault("node.urls", "http://localhost:7777/rpc")
	v.SetDefault("node.chain_name", "casper-test")
	v.SetDefault("node.request_timeout", 30*time.Second)

	v.SetDefault("signing.contract_hash", "")
	v.SetDefault("signing.payment_motes", uint64(5_000_000_000))
	v.SetDefault("signing.ttl", 30*time.Minute)
	v.SetDefault("signing.gas_price", uint64(1))
	v.SetDefault("signing.bridge_url", "")
	v.SetDefault("signing.local_key_path", "")
	v.SetDefault("signing.await_timeout", 2*time.Minute)
	v.SetDefault("signing.poll_interval", 5*time.Second)

	return Server{
		Echo: EchoServer{
			ListenAddress:                  v.GetString("echo.listen_address"),
			HideInternalServerErrorDetails: v.GetBool("echo.hide_internal_server_error_details"),
			EnableMetricsMiddleware:        v.GetBool("echo.enable_metrics_middleware"),
		},
		Logger: LoggerServer{
			Level:              v.GetString("logger.level"),
			PrettyPrintConsole: v.GetBool("logger.pretty_print_console"),
		},
		Node: NodeServer{
			URLs:           splitURLs(v.GetString("node.urls")),
			ChainName:      v.GetString("node.chain_name"),
			RequestTimeout: v.GetDuration("node.request_timeout"),
		},
		Signing: SigningServer{
			ContractHash: v.GetString("signing.contract_hash"),
			PaymentMotes: v.GetUint64("signing.payment_motes"),
			TTL:          v.GetDuration("signing.ttl"),
			GasPrice:     v.GetUint64("signing.gas_price"),
			BridgeURL:    v.GetString("signing.bridge_url"),
			LocalKeyPath: v.GetString("signing.local_key_path"),
			AwaitTimeout: v.GetDuration("signing.await_timeout"),
			PollInterval: v.GetDuration("signing.poll_interval"),
		},
	}
}

// Validate checks the invariants the service cannot start without.
func (c Server) Validate() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(c.Echo.ListenAddress, "CREDS_ECHO_LISTEN_ADDRESS"),
		vala.StringNotEmpty(c.Node.ChainName, "CREDS_NODE_CHAIN_NAME"),
		vala.GreaterThan(len(c.Node.URLs), 0, "CREDS_NODE_URLS"),
	).Check()
}

// splitURLs parses a comma-separated URL list.
func splitURLs(raw string) []string {
	parts := strings.Split(raw, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}
