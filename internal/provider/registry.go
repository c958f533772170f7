package provider

// Config mirrors the aiProvider sub-object of settings.json (see
// internal/config), kept here rather than imported to avoid a dependency
// cycle between config and provider.
type Config struct {
	Provider    string // "local" | "hosted-a" | "hosted-b"
	LocalModel  string
	LocalCommand string
	LocalArgs   []string
	HostedAKey   string
	HostedAModel string
	HostedBKey   string
	HostedBModel string
}

// Select builds the concrete AIProvider named by cfg.Provider. An unknown
// or empty provider name resolves to local, a fail-open default that
// prefers the zero-config transport.
func Select(cfg Config) AIProvider {
	switch cfg.Provider {
	case "hosted-a":
		return NewHostedAProvider(cfg.HostedAKey, cfg.HostedAModel)
	case "hosted-b":
		return NewHostedBProvider(cfg.HostedBKey, cfg.HostedBModel)
	default:
		command := cfg.LocalCommand
		if command == "" {
			command = "claude"
		}
		return NewLocalProvider(command, cfg.LocalModel, cfg.LocalArgs)
	}
}
