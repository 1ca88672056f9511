package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"coding/internal/domain"
)

var ErrInvalidCards = errors.New("invalid card set")

//go:embed commands.json
var defaultCards []byte

// CardSpec describes copies of one instruction card.
type CardSpec struct {
	Kind   string `json:"kind" toml:"kind"`
	Value  string `json:"value,omitempty" toml:"value"`
	Copies int    `json:"copies" toml:"copies"`
}

// CardSet is the full instruction pool definition.
type CardSet struct {
	Cards []CardSpec `json:"cards" toml:"cards"`
}

// DefaultCardSet returns the built-in card set.
func DefaultCardSet() CardSet {
	set, err := ParseCardSet(defaultCards, ".json")
	if err != nil {
		panic(fmt.Sprintf("built-in card set: %v", err))
	}
	return set
}

// LoadCardSet reads a card set, choosing the decoder by file extension.
// An empty path returns the built-in set.
func LoadCardSet(path string) (CardSet, error) {
	if path == "" {
		return DefaultCardSet(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return CardSet{}, fmt.Errorf("failed to read card set: %w", err)
	}
	return ParseCardSet(data, filepath.Ext(path))
}

// ParseCardSet decodes data as TOML when ext is ".toml" and as JSON otherwise.
func ParseCardSet(data []byte, ext string) (CardSet, error) {
	var set CardSet
	if strings.EqualFold(ext, ".toml") {
		if err := toml.Unmarshal(data, &set); err != nil {
			return CardSet{}, fmt.Errorf("failed to unmarshal card set: %w", err)
		}
	} else if err := json.Unmarshal(data, &set); err != nil {
		return CardSet{}, fmt.Errorf("failed to unmarshal card set: %w", err)
	}
	if err := set.Validate(); err != nil {
		return CardSet{}, err
	}
	return set, nil
}

// Validate checks kinds, values and copy counts without any line layout in mind.
func (s CardSet) Validate() error {
	if len(s.Cards) == 0 {
		return fmt.Errorf("no cards: %w", ErrInvalidCards)
	}
	var ids domain.IDSource
	for i, spec := range s.Cards {
		if _, err := spec.command(&ids); err != nil {
			return fmt.Errorf("card %d: %w", i, err)
		}
		if spec.Copies < 1 {
			return fmt.Errorf("card %d (%s): copies must be positive: %w", i, spec.Kind, ErrInvalidCards)
		}
	}
	return nil
}

// Build creates the instruction pool. GOTO and DELETE targets must be lines
// of sequence; END and NOOP are reserved for the program itself.
func (s CardSet) Build(ids *domain.IDSource, sequence []int) ([]*domain.Command, error) {
	inSequence := make(map[int]bool, len(sequence))
	for _, line := range sequence {
		inSequence[line] = true
	}

	var pool []*domain.Command
	for i, spec := range s.Cards {
		for c := 0; c < spec.Copies; c++ {
			cmd, err := spec.command(ids)
			if err != nil {
				return nil, fmt.Errorf("card %d: %w", i, err)
			}
			if target, ok := cmd.Target(); ok && !inSequence[target] {
				return nil, fmt.Errorf("card %d: %s targets line %d outside the program: %w", i, cmd, target, ErrInvalidCards)
			}
			pool = append(pool, cmd)
		}
	}
	return pool, nil
}

func (spec CardSpec) command(ids *domain.IDSource) (*domain.Command, error) {
	kind, ok := domain.ParseKind(spec.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q: %w", spec.Kind, ErrInvalidCards)
	}
	if kind == domain.KindEnd || kind == domain.KindNoop {
		return nil, fmt.Errorf("%s is not a playable card: %w", kind, ErrInvalidCards)
	}
	cmd, err := domain.NewCommand(ids.Next(), kind, spec.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCards, err)
	}
	return cmd, nil
}
