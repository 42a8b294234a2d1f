// Package editor is the synchronization controller: it holds the workflow
// document and its visual graph together and keeps them consistent after
// every edit. Graph edits resync document-from-graph, document edits resync
// graph-from-document; the asymmetry avoids feedback loops between the two
// directions.
package editor

import "github.com/pipeboard/pipeboard/pkg/models"

// State is one consistent (document, graph, selection) tuple. Commands take a
// state and return a new one; shared state is never mutated in place.
type State struct {
	Document  *models.Workflow
	Graph     *models.Graph
	Selection string
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	return State{
		Document:  s.Document.Clone(),
		Graph:     s.Graph.Clone(),
		Selection: s.Selection,
	}
}
