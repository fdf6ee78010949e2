package logfields

import (
	"time"

	"go.uber.org/zap"
)

// Canonical log field names shared by every package.
const (
	KeyFile       = "file"
	KeyPath       = "path"
	KeyBuildID    = "build_id"
	KeyPages      = "pages"
	KeySkipped    = "skipped"
	KeyDurationMS = "duration_ms"
	KeyStatus     = "status"
	KeyMethod     = "method"
	KeyAddr       = "addr"
	KeyKind       = "kind"
	KeyError      = "error"
)

func File(rel string) zap.Field     { return zap.String(KeyFile, rel) }
func Path(p string) zap.Field       { return zap.String(KeyPath, p) }
func BuildID(id string) zap.Field   { return zap.String(KeyBuildID, id) }
func Pages(n int) zap.Field         { return zap.Int(KeyPages, n) }
func Skipped(n int) zap.Field       { return zap.Int(KeySkipped, n) }
func Status(code int) zap.Field     { return zap.Int(KeyStatus, code) }
func Method(m string) zap.Field     { return zap.String(KeyMethod, m) }
func Addr(a string) zap.Field       { return zap.String(KeyAddr, a) }
func Kind(k string) zap.Field       { return zap.String(KeyKind, k) }
func Duration(d time.Duration) zap.Field {
	return zap.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) zap.Field {
	if err == nil {
		return zap.String(KeyError, "")
	}
	return zap.String(KeyError, err.Error())
}
