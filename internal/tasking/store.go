package tasking

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/signalsfoundry/satti-simulator/model"
)

var (
	// ErrCommandNotFound indicates a requested command was not found.
	ErrCommandNotFound = errors.New("command not found")
	// ErrCommandInProgress indicates the command is still progressing.
	ErrCommandInProgress = errors.New("command is already in progress")
	// ErrRerunNotAllowed indicates the command is terminal but not FAILED.
	ErrRerunNotAllowed = errors.New("only failed commands can be rerun")
	// ErrProductNotReady indicates the command has no downloadable product.
	ErrProductNotReady = errors.New("image is not ready")
)

// Store is the in-memory command record store. Reads return copies; the
// engine mutates records only through the transition methods, which stamp
// UpdatedAt.
type Store struct {
	mu       sync.RWMutex
	commands map[string]*model.Command
	order    []string // insertion order for stable listings
	now      func() time.Time
}

// NewStore constructs an empty store. The now function stamps record
// timestamps; nil defaults to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		commands: make(map[string]*model.Command),
		now:      now,
	}
}

// Put inserts a new command record.
func (s *Store) Put(cmd model.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.commands[cmd.ID]; !exists {
		s.order = append(s.order, cmd.ID)
	}
	stored := cmd
	s.commands[cmd.ID] = &stored
}

// Get returns a copy of the command with the given ID.
func (s *Store) Get(id string) (model.Command, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cmd, ok := s.commands[id]
	if !ok {
		return model.Command{}, ErrCommandNotFound
	}
	return *cmd, nil
}

// List returns copies of all commands in insertion order.
func (s *Store) List() []model.Command {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]model.Command, 0, len(s.order))
	for _, id := range s.order {
		if cmd, ok := s.commands[id]; ok {
			res = append(res, *cmd)
		}
	}
	return res
}

// Transition moves a command to a non-terminal or DOWNLINK_READY state and
// records the operator-facing message.
func (s *Store) Transition(id string, state model.CommandState, message string) (model.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, ok := s.commands[id]
	if !ok {
		return model.Command{}, ErrCommandNotFound
	}
	cmd.State = state
	cmd.Message = message
	if state != model.StateFailed {
		cmd.FailureReason = ""
	}
	cmd.UpdatedAt = s.now()
	return *cmd, nil
}

// Fail moves a command to FAILED with the given reason.
func (s *Store) Fail(id, reason string) (model.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, ok := s.commands[id]
	if !ok {
		return model.Command{}, ErrCommandNotFound
	}
	cmd.State = model.StateFailed
	cmd.Message = reason
	cmd.FailureReason = reason
	cmd.UpdatedAt = s.now()
	return *cmd, nil
}

// Complete attaches the product results and moves the command to
// DOWNLINK_READY in one step, so readers never observe a ready command
// without metadata.
func (s *Store) Complete(id, artifactRef string, acq *model.AcquisitionMetadata, product *model.ProductMetadata, message string) (model.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, ok := s.commands[id]
	if !ok {
		return model.Command{}, ErrCommandNotFound
	}
	cmd.ArtifactRef = artifactRef
	cmd.Acquisition = acq
	cmd.Product = product
	cmd.State = model.StateDownlinkReady
	cmd.Message = message
	cmd.FailureReason = ""
	cmd.UpdatedAt = s.now()
	return *cmd, nil
}

// ResetForRerun validates the rerun preconditions and puts the command back
// to QUEUED with cleared results. It returns the stale artifact reference
// so the caller can delete the file.
func (s *Store) ResetForRerun(id, message string) (staleArtifact string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, ok := s.commands[id]
	if !ok {
		return "", ErrCommandNotFound
	}
	if cmd.State.InProgress() {
		return "", ErrCommandInProgress
	}
	if cmd.State != model.StateFailed {
		return "", ErrRerunNotAllowed
	}

	staleArtifact = cmd.ArtifactRef
	cmd.ArtifactRef = ""
	cmd.Acquisition = nil
	cmd.Product = nil
	cmd.State = model.StateQueued
	cmd.Message = message
	cmd.FailureReason = ""
	cmd.UpdatedAt = s.now()
	return staleArtifact, nil
}

// ClearArtifacts drops the artifact reference from every command that has
// one, leaving state and metadata untouched. It returns the affected
// command IDs sorted for stable reporting.
func (s *Store) ClearArtifacts(message string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cleared []string
	for id, cmd := range s.commands {
		if cmd.ArtifactRef == "" {
			continue
		}
		cmd.ArtifactRef = ""
		cmd.Message = message
		cmd.UpdatedAt = s.now()
		cleared = append(cleared, id)
	}
	sort.Strings(cleared)
	return cleared
}

// ActiveCount returns how many commands are in a non-terminal state.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, cmd := range s.commands {
		if cmd.State.InProgress() {
			n++
		}
	}
	return n
}
