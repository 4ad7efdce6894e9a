// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package catalog assembles the built-in composers. Each composer owns one
// configuration block and contributes its descriptors only when that block is
// present in the environment config.
package catalog

import (
	"github.com/platform-engineering-labs/composa/internal/catalog/alb"
	"github.com/platform-engineering-labs/composa/internal/catalog/data"
	"github.com/platform-engineering-labs/composa/internal/catalog/eks"
	"github.com/platform-engineering-labs/composa/internal/catalog/kms"
	"github.com/platform-engineering-labs/composa/internal/catalog/msk"
	"github.com/platform-engineering-labs/composa/internal/catalog/network"
	"github.com/platform-engineering-labs/composa/internal/catalog/opensearch"
	"github.com/platform-engineering-labs/composa/internal/catalog/waf"
	"github.com/platform-engineering-labs/composa/pkg/compose"
)

// Default returns all built-in composers in composition order. Network runs
// first so later composers can reference its descriptors; order otherwise
// only affects the position of descriptors in the emitted document.
func Default() []compose.Composer {
	return []compose.Composer{
		network.New(),
		kms.New(),
		alb.New(),
		eks.New(),
		msk.New(),
		opensearch.New(),
		data.New(),
		waf.New(),
	}
}
