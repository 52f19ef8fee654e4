package model

const (
	defaultRegistryPath   = "devices.json"
	defaultInterface      = "wg0"
	defaultConfPath       = "/etc/wireguard/wg0.conf"
	defaultNetwork        = "10.10.0"
	defaultMaxIP          = 254
	defaultCommandTimeout = 10
)

type Config struct {
	HTTPSettings      HTTPSettings
	RegistrySettings  RegistrySettings
	WireGuardSettings WireGuardSettings
	RelaySettings     RelaySettings
}

func NewConfig() *Config {
	config := &Config{}
	config.SetDefaults()
	return config
}

func (c *Config) SetDefaults() {
	c.HTTPSettings.SetDefaults()
	c.RegistrySettings.SetDefaults()
	c.WireGuardSettings.SetDefaults()
	c.RelaySettings.SetDefaults()
}

type HTTPSettings struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

func (s *HTTPSettings) SetDefaults() {
	if s.Port == 0 {
		s.Port = 8000
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 15
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 15
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = 60
	}
}

type RegistrySettings struct {
	// Path of the device registry file. The file is shared with
	// out-of-band tooling and is only ever accessed under an advisory
	// lock.
	Path string
}

func (s *RegistrySettings) SetDefaults() {
	if s.Path == "" {
		s.Path = defaultRegistryPath
	}
}

type WireGuardSettings struct {
	Interface string
	ConfPath  string
	// CommandTimeout bounds every wg/wg-quick invocation, in seconds, so
	// a hung control call cannot hold the configuration lock forever.
	CommandTimeout int
}

func (s *WireGuardSettings) SetDefaults() {
	if s.Interface == "" {
		s.Interface = defaultInterface
	}
	if s.ConfPath == "" {
		s.ConfPath = defaultConfPath
	}
	if s.CommandTimeout == 0 {
		s.CommandTimeout = defaultCommandTimeout
	}
}

type RelaySettings struct {
	// PublicKey is the relay-side credential handed back to newly
	// registered devices.
	PublicKey string
	// Network is the /24 prefix tunnel addresses are issued under.
	Network string
	// MaxIP is the inclusive upper bound of the last octet.
	MaxIP int
}

func (s *RelaySettings) SetDefaults() {
	if s.Network == "" {
		s.Network = defaultNetwork
	}
	if s.MaxIP == 0 {
		s.MaxIP = defaultMaxIP
	}
}
