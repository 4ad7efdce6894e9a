// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/theory/jsonpath"
	"github.com/theory/jsonpath/registry"
	"github.com/tidwall/gjson"
)

// jsonpathParser is a package-level parser with RFC 9535 function extensions
var jsonpathParser = jsonpath.NewParser(jsonpath.WithRegistry(registry.New()))

// Kind identifies the type of infrastructure object a descriptor stands for.
type Kind string

const (
	KindVPC               Kind = "VPC"
	KindSubnet            Kind = "Subnet"
	KindNatGateway        Kind = "NatGateway"
	KindSecurityGroup     Kind = "SecurityGroup"
	KindSecurityGroupRule Kind = "SecurityGroupRule"

	KindLoadBalancer Kind = "LoadBalancer"
	KindListener     Kind = "Listener"
	KindTargetGroup  Kind = "TargetGroup"

	KindCluster          Kind = "Cluster"
	KindNodeGroup        Kind = "NodeGroup"
	KindPolicyAttachment Kind = "PolicyAttachment"

	KindKey   Kind = "Key"
	KindAlias Kind = "Alias"

	KindBrokerCluster Kind = "BrokerCluster"
	KindLogGroup      Kind = "LogGroup"

	KindDomain Kind = "Domain"

	KindDBInstance       Kind = "DBInstance"
	KindDBSubnetGroup    Kind = "DBSubnetGroup"
	KindCacheCluster     Kind = "CacheCluster"
	KindCacheSubnetGroup Kind = "CacheSubnetGroup"

	KindWebACL            Kind = "WebACL"
	KindWebACLRule        Kind = "WebACLRule"
	KindWebACLAssociation Kind = "WebACLAssociation"
)

// ResourceDescriptor is a fully-specified, not-yet-provisioned representation
// of one infrastructure resource. Kind plus Key identify it within a
// composition pass; there is no runtime identity beyond that. Attributes are
// immutable once the pass has linked its cross-references.
type ResourceDescriptor struct {
	Kind       Kind            `json:"Kind"`
	Key        string          `json:"Key"`
	Attributes json.RawMessage `json:"Attributes"`
	DependsOn  []string        `json:"DependsOn,omitempty"`
}

// TupleKey returns the lookup key for this descriptor in the format: kind/key.
// This is what cross-references and dependency edges are recorded against.
func (d *ResourceDescriptor) TupleKey() string {
	return fmt.Sprintf("%s/%s", strings.ToLower(string(d.Kind)), d.Key)
}

// AddDependency records an edge to another descriptor's tuple key, once.
func (d *ResourceDescriptor) AddDependency(tupleKey string) {
	if slices.Contains(d.DependsOn, tupleKey) {
		return
	}
	d.DependsOn = append(d.DependsOn, tupleKey)
}

// GetProperty retrieves an attribute value using a query path.
// Returns the value as a string and whether it was found.
// Note: null values are treated as not found.
func (d *ResourceDescriptor) GetProperty(query string) (string, bool) {
	result := gjson.Get(string(d.Attributes), query)
	if !result.Exists() || result.Type == gjson.Null {
		return "", false
	}
	return result.String(), true
}

// GetPropertyJSONPath retrieves an attribute value using full JSONPath syntax.
func (d *ResourceDescriptor) GetPropertyJSONPath(query string) (string, bool) {
	var data any
	if err := json.Unmarshal(d.Attributes, &data); err != nil {
		slog.Error("failed to unmarshal attributes", "descriptor", d.TupleKey(), "error", err)
		return "", false
	}
	// Normalize simple field names to JSONPath syntax
	// e.g., "Port" becomes "$.Port"
	if !strings.HasPrefix(query, "$") {
		query = "$." + query
	}
	path, err := jsonpathParser.Parse(query)
	if err != nil {
		slog.Error("failed to parse jsonpath query", "query", query, "error", err)
		return "", false
	}
	nodes := path.Select(data)
	if len(nodes) == 0 {
		return "", false
	}
	if strVal, ok := nodes[0].(string); ok {
		return strVal, true
	}
	return fmt.Sprintf("%v", nodes[0]), true
}

// GetPropertyInt retrieves a numeric attribute value, zero when absent.
func (d *ResourceDescriptor) GetPropertyInt(query string) (int64, bool) {
	result := gjson.Get(string(d.Attributes), query)
	if !result.Exists() || result.Type == gjson.Null {
		return 0, false
	}
	return result.Int(), true
}
