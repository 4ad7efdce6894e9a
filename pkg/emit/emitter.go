// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package emit is the external boundary of a composition pass: it hands a
// finished descriptor graph to a provisioning backend. The core guarantees
// descriptors crossing this boundary are fully linked and validation-clean;
// this package enforces that contract and refuses anything else.
package emit

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

// Document is the emitted form of one composition pass. Field names mirror
// the configuration input so plan-inspection tooling can correlate both
// sides.
type Document struct {
	PassID    string                     `json:"PassID"`
	Resources []model.ResourceDescriptor `json:"Resources"`
}

// Emitter receives finished graphs. Implementations are provisioning
// backends or files standing in for one.
type Emitter interface {
	Emit(g *compose.Graph) error
}

// JSONEmitter writes the emission document as JSON to a writer.
type JSONEmitter struct {
	W        io.Writer
	Beautify bool
}

func (e *JSONEmitter) Emit(g *compose.Graph) error {
	serialized, err := EncodeDocument(g, e.Beautify)
	if err != nil {
		return err
	}

	_, err = e.W.Write(append(serialized, '\n'))
	return err
}

// EncodeDocument serializes a graph after checking the boundary contract:
// the graph must be linked and free of blocking violations.
func EncodeDocument(g *compose.Graph, beautify bool) ([]byte, error) {
	if err := checkBoundary(g); err != nil {
		return nil, err
	}

	doc := Document{
		PassID:    g.PassID,
		Resources: g.Descriptors,
	}

	if beautify {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

func checkBoundary(g *compose.Graph) error {
	if !g.Linked() {
		return fmt.Errorf("refusing to emit: graph has unresolved cross-references")
	}
	if blocking := g.Blocking(); len(blocking) > 0 {
		details := make([]string, 0, len(blocking))
		for _, v := range blocking {
			details = append(details, v.String())
		}
		return fmt.Errorf("refusing to emit: %d blocking violation(s):\n%s", len(blocking), strings.Join(details, "\n"))
	}
	return nil
}
