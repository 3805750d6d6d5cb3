package es

import "log/slog"

// Version counts the events applied to an aggregate instance. A blank
// aggregate has version 0, replaying n events yields version n.
// Callers may use it as an optimistic concurrency token.
type Version uint64

func (v Version) Uint64() uint64                         { return uint64(v) }
func (v Version) SlogAttr() slog.Attr                    { return newSlogVersionAttr("version", v) }
func (v Version) SlogAttrWithKey(key string) slog.Attr   { return newSlogVersionAttr(key, v) }
func newSlogVersionAttr(key string, v Version) slog.Attr { return slog.Uint64(key, uint64(v)) }
