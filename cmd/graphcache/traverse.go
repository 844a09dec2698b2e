package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/graphcache"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// traverse loads ids of typeName and follows the relationship path from
// them, one relationship per step. Entities of a step are resolved
// concurrently so their lookups share batches. It returns the distinct
// entities reached by the last step.
func traverse(ctx context.Context, reg *graphcache.Registry, typeName string, ids []any, path []string) ([]*graphcache.Entity, error) {
	loaded, err := reg.LoadMany(ctx, typeName, ids)
	if err != nil {
		return nil, err
	}
	current := distinct(loaded)
	for _, name := range path {
		results := make([][]*graphcache.Entity, len(current))
		g, gctx := errgroup.WithContext(ctx)
		for i, e := range current {
			g.Go(func() (err error) {
				results[i], err = e.Related(gctx, name)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		var next []*graphcache.Entity
		for _, r := range results {
			next = append(next, r...)
		}
		current = distinct(next)
	}
	return current, nil
}

// distinct drops nil and repeated entities, keeping the first occurrence.
func distinct(entities []*graphcache.Entity) []*graphcache.Entity {
	seen := make(map[string]struct{}, len(entities))
	out := make([]*graphcache.Entity, 0, len(entities))
	for _, e := range entities {
		if e == nil {
			continue
		}
		k := e.Type().Name + ":" + graphcache.Canonical(e.ID())
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}

// parsePath splits a dotted relationship path. An empty string is the
// empty path.
func parsePath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

// parseIDs converts identifier arguments. Stores compare identifiers by
// canonical form, so string identifiers match numeric keys.
func parseIDs(args []string) []any {
	ids := make([]any, 0, len(args))
	for _, a := range args {
		for _, id := range strings.Split(a, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// write encodes entities to w in the given format.
func write(w io.Writer, format string, entities []*graphcache.Entity) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entities)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(entities)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
