// Package ocr defines the recognition-engine boundary of the pipeline and
// the bounded fallback ladder that recovers from engine failures. The
// Engine interface is intentionally small so any conforming provider (a
// native library, a remote service, a fake in tests) can sit behind it
// without leaking provider-specific concerns into callers.
package ocr
