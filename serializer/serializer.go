// Package serializer implements the save/load wire contract external to
// the core: an opaque byte stream where, for each alive entity, an entity
// sentinel is followed by the id and payload of each registered
// component-saver that has data for it.
//
// The package is intentionally agnostic of the core's Entity/World types —
// callers (see the root package's Registrant) supply plain closures over
// EntityID, keeping this package free of any import back to the core and
// avoiding an import cycle.
package serializer

import (
	"bytes"
	"encoding/gob"
	"errors"
	"io"
)

// EntityID is the wire representation of a core Entity.
type EntityID uint32

// ErrMismatchedSaverLoader is returned by Load when a component id present
// in the stream has no registered loader. Save/load functions must be
// registered in matched pairs.
var ErrMismatchedSaverLoader = errors.New("serializer: no loader registered for component id")

// Saver produces payload for e's component, or ok=false if e does not bear it.
type Saver func(e EntityID) (payload []byte, ok bool, err error)

// Loader consumes payload, applying it to e.
type Loader func(e EntityID, payload []byte) error

type record struct {
	Sentinel    bool
	EntityID    EntityID
	ComponentID uint32
	Payload     []byte
}

// Serializer holds the registered per-component-type saver/loader pairs.
type Serializer struct {
	savers  map[uint32]Saver
	loaders map[uint32]Loader
	order   []uint32
}

// New constructs an empty Serializer.
func New() *Serializer {
	return &Serializer{
		savers:  make(map[uint32]Saver),
		loaders: make(map[uint32]Loader),
	}
}

// RegisterSaver installs (or replaces) the saver for componentID.
func (s *Serializer) RegisterSaver(componentID uint32, save Saver) {
	if _, exists := s.savers[componentID]; !exists {
		s.order = append(s.order, componentID)
	}
	s.savers[componentID] = save
}

// RegisterLoader installs (or replaces) the loader for componentID.
func (s *Serializer) RegisterLoader(componentID uint32, load Loader) {
	s.loaders[componentID] = load
}

// Save writes the entity sentinel and component records for every id in
// entities, in the order given, using the savers registered so far.
func (s *Serializer) Save(w io.Writer, entities []EntityID) error {
	enc := gob.NewEncoder(w)
	for _, e := range entities {
		if err := enc.Encode(record{Sentinel: true, EntityID: e}); err != nil {
			return err
		}
		for _, cid := range s.order {
			payload, ok, err := s.savers[cid](e)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := enc.Encode(record{ComponentID: cid, Payload: payload}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Load consumes the stream, calling createEntity on every sentinel and
// dispatching every component record to its registered loader. Ids are not
// preserved across a round-trip: createEntity is responsible for
// allocating fresh ids, matching the documented "identity up to entity
// renumbering" contract.
func (s *Serializer) Load(r io.Reader, createEntity func() EntityID) error {
	dec := gob.NewDecoder(r)
	var current EntityID
	haveCurrent := false

	for {
		var rec record
		err := dec.Decode(&rec)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if rec.Sentinel {
			current = createEntity()
			haveCurrent = true
			continue
		}

		if !haveCurrent {
			return errors.New("serializer: component record before first entity sentinel")
		}

		load, ok := s.loaders[rec.ComponentID]
		if !ok {
			return ErrMismatchedSaverLoader
		}
		if err := load(current, rec.Payload); err != nil {
			return err
		}
	}
}

// EncodeGob gob-encodes a plain-old-data component value.
func EncodeGob[C any](v C) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeGob gob-decodes a plain-old-data component value.
func DecodeGob[C any](data []byte) (C, error) {
	var v C
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}
