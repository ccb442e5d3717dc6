package tasking

import (
	"errors"

	"github.com/signalsfoundry/satti-simulator/internal/artifact"
	"github.com/signalsfoundry/satti-simulator/model"
)

// Gate checks whether a command's product may be downloaded. State decides
// between pending and ready; the file check decides whether a ready
// command's artifact still exists.
type Gate struct {
	store     *Store
	artifacts *artifact.Store
}

// NewGate wires the download gate.
func NewGate(store *Store, artifacts *artifact.Store) *Gate {
	return &Gate{store: store, artifacts: artifacts}
}

// Product is a resolved, downloadable artifact.
type Product struct {
	CommandID string
	Path      string
	SizeBytes int64
}

// Resolve validates the download preconditions for a command and returns
// the artifact location. A command that never reached DOWNLINK_READY
// reports ErrProductNotReady; a ready command whose file is gone, such as
// after an operator clear, reports ErrArtifactMissing.
func (g *Gate) Resolve(id string) (Product, error) {
	cmd, err := g.store.Get(id)
	if err != nil {
		return Product{}, err
	}
	if cmd.State != model.StateDownlinkReady {
		return Product{}, ErrProductNotReady
	}

	size, err := g.artifacts.Size(id)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return Product{}, ErrArtifactMissing
		}
		return Product{}, err
	}
	return Product{
		CommandID: id,
		Path:      g.artifacts.Path(id),
		SizeBytes: size,
	}, nil
}
