// Package bridge connects samprep to the single-cell libraries that do the
// real work.
//
// The exec backend runs an external helper command. samprep talks to it
// through files: the helper reads its inputs from paths given on the command
// line and writes an opaque payload to the requested output path. An optional
// JSON object on the helper's last stdout line describes the payload.
//
//	<command> [args] load  --input <dataset> --output <payload>
//	<command> [args] build --request <request.json>
//
// request.json carries the species codes in dictionary order, the staged
// sample payload for each code, the maps directory (always ending in a
// separator), save_processed (always false) and the output path.
//
// Each invocation gets its own scratch directory, removed afterwards unless
// engine.keep_workdir is set.
//
//	backend, err := bridge.NewFromConfig(cfg, bridge.WithStderr(os.Stderr))
//	obj, err := backend.Load(ctx, "human.h5ad")
package bridge
