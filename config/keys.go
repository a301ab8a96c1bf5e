package config

import (
	"fmt"
	"strings"
)

// ParseSequence splits one key sequence into keys. "gg" is two keys,
// "<c-o>" and "<pgdn>" are one key each.
func ParseSequence(seq string) ([]string, error) {
	var keys []string
	for len(seq) > 0 {
		if seq[0] == '<' {
			end := strings.IndexByte(seq, '>')
			if end < 0 {
				return nil, fmt.Errorf("unterminated key name in %q", seq)
			}
			if end == 1 {
				keys = append(keys, "<")
				seq = seq[1:]
				continue
			}
			keys = append(keys, strings.ToLower(seq[:end+1]))
			seq = seq[end+1:]
			continue
		}
		r := []rune(seq)[0]
		keys = append(keys, string(r))
		seq = seq[len(string(r)):]
	}
	return keys, nil
}

// ParseBinding splits a binding into its alternative sequences.
func ParseBinding(binding string) ([][]string, error) {
	var seqs [][]string
	for _, field := range strings.Fields(binding) {
		keys, err := ParseSequence(field)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, keys)
	}
	return seqs, nil
}

type keyBinding struct {
	action string
	keys   []string
}

// KeyMatcher matches typed keys against the configured bindings,
// buffering the keys of an unfinished multi-key sequence such as "gg".
type KeyMatcher struct {
	bindings []keyBinding
	pending  []string
}

// NewKeyMatcher compiles kb. Bindings that fail to parse are reported
// together; the valid ones are still usable.
func NewKeyMatcher(kb Keybindings) (*KeyMatcher, error) {
	km := &KeyMatcher{}
	var bad []string
	for _, ab := range kb.Actions() {
		seqs, err := ParseBinding(ab[1])
		if err != nil {
			bad = append(bad, fmt.Sprintf("%s: %v", ab[0], err))
			continue
		}
		for _, keys := range seqs {
			km.bindings = append(km.bindings, keyBinding{action: ab[0], keys: keys})
		}
	}
	if len(bad) > 0 {
		return km, fmt.Errorf("invalid keybindings: %s", strings.Join(bad, "; "))
	}
	return km, nil
}

// Feed consumes one key. It returns the bound action once a sequence is
// complete. A key that cannot continue the pending sequence starts over.
func (km *KeyMatcher) Feed(key string) (string, bool) {
	seq := append(append([]string(nil), km.pending...), key)

	prefix := false
	for _, b := range km.bindings {
		if !hasPrefix(b.keys, seq) {
			continue
		}
		if len(b.keys) == len(seq) {
			km.pending = nil
			return b.action, true
		}
		prefix = true
	}
	if prefix {
		km.pending = seq
		return "", false
	}
	if len(km.pending) > 0 {
		km.pending = nil
		return km.Feed(key)
	}
	return "", false
}

// Pending returns the keys typed so far of an unfinished sequence.
func (km *KeyMatcher) Pending() string {
	return strings.Join(km.pending, "")
}

// ClearPending drops an unfinished sequence.
func (km *KeyMatcher) ClearPending() {
	km.pending = nil
}

// Binding returns the first sequence bound to action, for help text.
func (km *KeyMatcher) Binding(action string) string {
	for _, b := range km.bindings {
		if b.action == action {
			return strings.Join(b.keys, "")
		}
	}
	return ""
}

func hasPrefix(keys, prefix []string) bool {
	if len(prefix) > len(keys) {
		return false
	}
	for i, k := range prefix {
		if keys[i] != k {
			return false
		}
	}
	return true
}
