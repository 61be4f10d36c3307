// Package io reads and writes neuron skeletons.
//
// # Overview
//
// Three formats are supported:
//
//   - Native JSON, the format written by this package and accepted by the
//     HTTP API
//   - Compact-skeleton JSON, the row-oriented export of tracing servers
//   - SWC, the plain-text morphology format used by most neuroscience tools
//
// # Native JSON
//
//	{
//	  "id": 42,
//	  "name": "PN left",
//	  "nodes": [
//	    {"id": 1, "parent": null, "x": 0, "y": 0, "z": 0, "radius": 120},
//	    {"id": 2, "parent": 1, "x": 10, "y": 0, "z": 0}
//	  ],
//	  "connectors": [
//	    {"node": 2, "relation": "post"}
//	  ],
//	  "tags": {"soma": [1]}
//	}
//
// Exactly one node has a null parent. Connectors with relation "pre" are
// outputs (presynaptic sites) and "post" inputs (postsynaptic sites).
//
// # Import
//
// Use [Import] to read any supported file by extension, or [ReadJSON],
// [ReadCompact] and [ReadSWC] to decode from an io.Reader:
//
//	s, err := pkgio.Import("neuron.swc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// All decoders validate the tree: errors wrap [arbor.ErrMalformedTree],
// [ErrDuplicateNode] or [skeleton.ErrUnknownNode] with the offending node.
//
// # Export
//
// [WriteJSON] and [ExportJSON] write native JSON; [WriteSWC] writes SWC.
// Output is ordered by node ID, so exporting the same skeleton twice gives
// identical bytes. [Marshal] returns the compact encoding used for content
// hashes.
//
// [arbor.ErrMalformedTree]: github.com/matzehuels/arbor/pkg/arbor.ErrMalformedTree
// [skeleton.ErrUnknownNode]: github.com/matzehuels/arbor/pkg/skeleton.ErrUnknownNode
package io
