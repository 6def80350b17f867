// Package config loads queue sizing and a declarative transition list from
// YAML, in the style of yanet2's per-module Config structs.
package config

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/nlowry/go-statecore/identity"
	"github.com/nlowry/go-statecore/mqueue"
	"github.com/nlowry/go-statecore/stt"
)

// QueueConfig sizes one MessageQueue. CapacityBytes is parsed from
// human-readable forms ("64KiB") via datasize.ByteSize.
type QueueConfig struct {
	CapacityBytes datasize.ByteSize `yaml:"capacity_bytes"`
}

// CapacityRecords converts CapacityBytes to the record count mqueue.New
// expects, rounding down to whole empty-record slots.
func (c QueueConfig) CapacityRecords() int {
	return int(c.CapacityBytes.Bytes()) / mqueue.EmptyRecordSize
}

// TableConfig sizes one StateTransitionTable.
type TableConfig struct {
	Elements int `yaml:"elements"`
}

// TransitionSpec is one row of a declarative transition list: the four
// named references SetTransition takes, plus the next state name.
type TransitionSpec struct {
	State     string `yaml:"state"`
	Interface string `yaml:"interface"`
	Message   string `yaml:"message"`
	Function  string `yaml:"function"`
	NextState string `yaml:"next_state"`
}

// Document is the top-level shape of an instance's YAML config: sizing for
// its queue and table, plus the transitions that build the table.
type Document struct {
	Queue       QueueConfig      `yaml:"queue"`
	Table       TableConfig      `yaml:"table"`
	Transitions []TransitionSpec `yaml:"transitions"`
}

// Load reads and parses path into a Document, then validates every
// transition entry structurally. Unlike SetTransition's strictly-sequential,
// stop-at-first-error contract, validation here collects every problem in
// one pass via go-multierror, so a config author sees every mistake at once.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := validate(doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func validate(doc Document) error {
	var result *multierror.Error

	if doc.Queue.CapacityBytes == 0 {
		result = multierror.Append(result, fmt.Errorf("queue.capacity_bytes must be set"))
	}
	if doc.Table.Elements <= 0 {
		result = multierror.Append(result, fmt.Errorf("table.elements must be positive"))
	}

	seen := make(map[[3]string]bool, len(doc.Transitions))
	for i, tr := range doc.Transitions {
		if tr.State == "" {
			result = multierror.Append(result, fmt.Errorf("transitions[%d]: state is required", i))
		}
		if tr.Interface == "" {
			result = multierror.Append(result, fmt.Errorf("transitions[%d]: interface is required", i))
		}
		if tr.Message == "" {
			result = multierror.Append(result, fmt.Errorf("transitions[%d]: message is required", i))
		}
		if tr.Function == "" {
			result = multierror.Append(result, fmt.Errorf("transitions[%d]: function is required", i))
		}
		if tr.NextState == "" {
			result = multierror.Append(result, fmt.Errorf("transitions[%d]: next_state is required", i))
		}

		key := [3]string{tr.State, tr.Interface, tr.Message}
		if seen[key] {
			result = multierror.Append(result, fmt.Errorf(
				"transitions[%d]: duplicate (state=%s, interface=%s, message=%s)", i, tr.State, tr.Interface, tr.Message))
		}
		seen[key] = true
	}

	return result.ErrorOrNil()
}

// BuildTable resolves every TransitionSpec's names through registry (so
// repeated mentions of the same name intern to one stable identity.Identity)
// and drives table.SetTransition in document order. It stops at the first
// SetTransition failure, preserving that method's own sequential contract;
// structural problems in the document itself are caught earlier by Load.
func BuildTable(table *stt.Table, registry *identity.Registry, specs []TransitionSpec) error {
	for i, tr := range specs {
		state := registry.Intern(identity.KindState, tr.State)
		iface := registry.Intern(identity.KindInterface, tr.Interface)
		msg := registry.Intern(identity.KindMessage, tr.Message)
		fn := registry.Intern(identity.KindFunction, tr.Function)
		next := registry.Intern(identity.KindState, tr.NextState)

		if err := table.SetTransition(state, iface, msg, fn, next); err != nil {
			return fmt.Errorf("config: transitions[%d]: %w", i, err)
		}
	}
	return nil
}
