package qbittorrent

import (
	"strings"
)

// Hash identifies a torrent by its info hash as the daemon reports it
// (40 hex characters for v1 torrents, 64 for hybrid ones). The client does
// not verify hex content, only that the value can travel in a hash list.
type Hash string

// ParseHash validates a raw identifier. It rejects empty or whitespace-only
// strings and strings that would corrupt a pipe-joined hash list.
func ParseHash(s string) (Hash, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", ErrInvalidHash
	}
	if strings.ContainsAny(trimmed, "| \t\r\n") {
		return "", ErrInvalidHash
	}
	return Hash(trimmed), nil
}

// Hashes selects the torrents a bulk operation applies to: either an explicit
// ordered list or every torrent known to the daemon. The zero value selects
// nothing and fails validation when used.
type Hashes struct {
	all  bool
	list []Hash
}

// AllTorrents selects every torrent. Each API generation has its own wire
// representation for this; the dispatch layer translates per generation.
var AllTorrents = Hashes{all: true}

// NewHashes validates a set of raw identifiers, preserving input order.
// Duplicates are kept as given; the daemon tolerates them and silent
// de-duplication would make the wire request differ from what the caller
// asked for.
func NewHashes(ids ...string) (Hashes, error) {
	if len(ids) == 0 {
		return Hashes{}, ErrEmptySet
	}
	list := make([]Hash, 0, len(ids))
	for _, id := range ids {
		h, err := ParseHash(id)
		if err != nil {
			return Hashes{}, err
		}
		list = append(list, h)
	}
	return Hashes{list: list}, nil
}

// HashesOf wraps already-validated hashes without re-checking them.
func HashesOf(hashes ...Hash) Hashes {
	return Hashes{list: hashes}
}

// All reports whether the selector is the all-torrents sentinel.
func (h Hashes) All() bool { return h.all }

// Empty reports whether the selector selects nothing.
func (h Hashes) Empty() bool { return !h.all && len(h.list) == 0 }

// Slice returns the explicit hash list, nil for the all sentinel.
func (h Hashes) Slice() []Hash {
	if h.all {
		return nil
	}
	return append([]Hash(nil), h.list...)
}

// join serializes the explicit list with the given separator, in input order.
func (h Hashes) join(sep string) string {
	parts := make([]string, len(h.list))
	for i, hash := range h.list {
		parts[i] = string(hash)
	}
	return strings.Join(parts, sep)
}
