// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

// EnvironmentConfig is the structured input of one composition pass: feature
// flags and attribute overrides for every service block, plus the global tag
// policy. All fields are pure data, evaluated once per pass; nothing in here
// is mutated during resolution.
//
// A nil service block disables that block's composer entirely.
type EnvironmentConfig struct {
	Project     string            `json:"Project" yaml:"Project"`
	Environment string            `json:"Environment" yaml:"Environment"`
	MinVersion  string            `json:"MinVersion,omitempty" yaml:"MinVersion,omitempty"`
	Tags        map[string]string `json:"Tags,omitempty" yaml:"Tags,omitempty"`

	Network      *NetworkConfig      `json:"Network,omitempty" yaml:"Network,omitempty"`
	LoadBalancer *LoadBalancerConfig `json:"LoadBalancer,omitempty" yaml:"LoadBalancer,omitempty"`
	Kubernetes   *KubernetesConfig   `json:"Kubernetes,omitempty" yaml:"Kubernetes,omitempty"`
	Encryption   *EncryptionConfig   `json:"Encryption,omitempty" yaml:"Encryption,omitempty"`
	Streaming    *StreamingConfig    `json:"Streaming,omitempty" yaml:"Streaming,omitempty"`
	Search       *SearchConfig       `json:"Search,omitempty" yaml:"Search,omitempty"`
	Database     *DatabaseConfig     `json:"Database,omitempty" yaml:"Database,omitempty"`
	Cache        *CacheConfig        `json:"Cache,omitempty" yaml:"Cache,omitempty"`
	Firewall     *FirewallConfig     `json:"Firewall,omitempty" yaml:"Firewall,omitempty"`
}

// Prefix is the project-environment prefix derived names start from.
func (c *EnvironmentConfig) Prefix() string {
	return c.Project + "-" + c.Environment
}

type NetworkConfig struct {
	CIDR        string            `json:"CIDR,omitempty" yaml:"CIDR,omitempty"`
	Zones       []string          `json:"Zones,omitempty" yaml:"Zones,omitempty"`
	SubnetCIDRs []string          `json:"SubnetCIDRs,omitempty" yaml:"SubnetCIDRs,omitempty"`
	NATGateway  bool              `json:"NATGateway,omitempty" yaml:"NATGateway,omitempty"`
	Tags        map[string]string `json:"Tags,omitempty" yaml:"Tags,omitempty"`
}

type LoadBalancerConfig struct {
	Internal       bool                         `json:"Internal,omitempty" yaml:"Internal,omitempty"`
	IdleTimeout    int                          `json:"IdleTimeout,omitempty" yaml:"IdleTimeout,omitempty"`
	CertificateArn string                       `json:"CertificateArn,omitempty" yaml:"CertificateArn,omitempty"`
	TargetGroups   map[string]TargetGroupConfig `json:"TargetGroups,omitempty" yaml:"TargetGroups,omitempty"`

	// Primary names the target group the default listener action forwards
	// to. When unset the first target group in lexicographic key order is
	// used and the validator reports an advisory.
	Primary string            `json:"Primary,omitempty" yaml:"Primary,omitempty"`
	Tags    map[string]string `json:"Tags,omitempty" yaml:"Tags,omitempty"`
}

type TargetGroupConfig struct {
	Port                int    `json:"Port,omitempty" yaml:"Port,omitempty"`
	Protocol            string `json:"Protocol,omitempty" yaml:"Protocol,omitempty"`
	HealthCheckPath     string `json:"HealthCheckPath,omitempty" yaml:"HealthCheckPath,omitempty"`
	HealthCheckInterval int    `json:"HealthCheckInterval,omitempty" yaml:"HealthCheckInterval,omitempty"`
}

type KubernetesConfig struct {
	Version         string                     `json:"Version,omitempty" yaml:"Version,omitempty"`
	NodeGroups      map[string]NodeGroupConfig `json:"NodeGroups,omitempty" yaml:"NodeGroups,omitempty"`
	PolicyArns      []string                   `json:"PolicyArns,omitempty" yaml:"PolicyArns,omitempty"`
	RemoteAccessKey string                     `json:"RemoteAccessKey,omitempty" yaml:"RemoteAccessKey,omitempty"`
	Tags            map[string]string          `json:"Tags,omitempty" yaml:"Tags,omitempty"`
}

type NodeGroupConfig struct {
	InstanceType string `json:"InstanceType,omitempty" yaml:"InstanceType,omitempty"`
	MinSize      int    `json:"MinSize,omitempty" yaml:"MinSize,omitempty"`
	DesiredSize  int    `json:"DesiredSize,omitempty" yaml:"DesiredSize,omitempty"`
	MaxSize      int    `json:"MaxSize,omitempty" yaml:"MaxSize,omitempty"`
}

type EncryptionConfig struct {
	// Alias enables the conditional alias descriptor when non-empty.
	Alias              string            `json:"Alias,omitempty" yaml:"Alias,omitempty"`
	DeletionWindowDays int               `json:"DeletionWindowDays,omitempty" yaml:"DeletionWindowDays,omitempty"`
	RotationEnabled    *bool             `json:"RotationEnabled,omitempty" yaml:"RotationEnabled,omitempty"`
	Tags               map[string]string `json:"Tags,omitempty" yaml:"Tags,omitempty"`
}

type StreamingConfig struct {
	Brokers               int               `json:"Brokers,omitempty" yaml:"Brokers,omitempty"`
	InstanceType          string            `json:"InstanceType,omitempty" yaml:"InstanceType,omitempty"`
	KafkaVersion          string            `json:"KafkaVersion,omitempty" yaml:"KafkaVersion,omitempty"`
	VolumeSize            int               `json:"VolumeSize,omitempty" yaml:"VolumeSize,omitempty"`
	CloudwatchLogsEnabled bool              `json:"CloudwatchLogsEnabled,omitempty" yaml:"CloudwatchLogsEnabled,omitempty"`
	LogRetentionDays      int               `json:"LogRetentionDays,omitempty" yaml:"LogRetentionDays,omitempty"`
	Tags                  map[string]string `json:"Tags,omitempty" yaml:"Tags,omitempty"`
}

type SearchConfig struct {
	InstanceType     string            `json:"InstanceType,omitempty" yaml:"InstanceType,omitempty"`
	InstanceCount    int               `json:"InstanceCount,omitempty" yaml:"InstanceCount,omitempty"`
	VolumeSize       int               `json:"VolumeSize,omitempty" yaml:"VolumeSize,omitempty"`
	AuditLogsEnabled bool              `json:"AuditLogsEnabled,omitempty" yaml:"AuditLogsEnabled,omitempty"`
	LogRetentionDays int               `json:"LogRetentionDays,omitempty" yaml:"LogRetentionDays,omitempty"`
	Tags             map[string]string `json:"Tags,omitempty" yaml:"Tags,omitempty"`
}

type DatabaseConfig struct {
	Engine              string            `json:"Engine,omitempty" yaml:"Engine,omitempty"`
	EngineVersion       string            `json:"EngineVersion,omitempty" yaml:"EngineVersion,omitempty"`
	InstanceClass       string            `json:"InstanceClass,omitempty" yaml:"InstanceClass,omitempty"`
	Port                int               `json:"Port,omitempty" yaml:"Port,omitempty"`
	MultiAZ             bool              `json:"MultiAZ,omitempty" yaml:"MultiAZ,omitempty"`
	ReadReplica         bool              `json:"ReadReplica,omitempty" yaml:"ReadReplica,omitempty"`
	BackupRetentionDays *int              `json:"BackupRetentionDays,omitempty" yaml:"BackupRetentionDays,omitempty"`
	Tags                map[string]string `json:"Tags,omitempty" yaml:"Tags,omitempty"`
}

type CacheConfig struct {
	Engine   string            `json:"Engine,omitempty" yaml:"Engine,omitempty"`
	NodeType string            `json:"NodeType,omitempty" yaml:"NodeType,omitempty"`
	Nodes    int               `json:"Nodes,omitempty" yaml:"Nodes,omitempty"`
	Port     int               `json:"Port,omitempty" yaml:"Port,omitempty"`
	Tags     map[string]string `json:"Tags,omitempty" yaml:"Tags,omitempty"`
}

type FirewallConfig struct {
	RateLimit             int               `json:"RateLimit,omitempty" yaml:"RateLimit,omitempty"`
	ManagedRules          []string          `json:"ManagedRules,omitempty" yaml:"ManagedRules,omitempty"`
	AssociateLoadBalancer bool              `json:"AssociateLoadBalancer,omitempty" yaml:"AssociateLoadBalancer,omitempty"`
	Tags                  map[string]string `json:"Tags,omitempty" yaml:"Tags,omitempty"`
}
