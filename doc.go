// Package hashgrid provides a generic in-memory table whose columns are
// addressed by key and whose rows are addressed by position.
//
// Every column of a table has exactly as many cells as the table has rows,
// and each cell is either Present with a value or Missing. Writing beyond the
// last row grows every column, so the table stays rectangular no matter how
// sparsely it is filled.
//
// # Architecture
//
// hashgrid is organized as a small core with supporting packages:
//
//  1. pkg/table: the Table type, its pluggable column backing (Go map or
//     google/btree) and its JSON and YAML encodings.
//
//  2. pkg/snapshot: a framed, optionally compressed encoding of a table for
//     streams and files.
//
//  3. pkg/compression: the zstd, s2, snappy, lz4, gzip and deflate codecs
//     used by snapshots.
//
//  4. pkg/config, pkg/logger, pkg/metrics, pkg/errors: YAML configuration,
//     zap logging, Prometheus collectors and the structured error type
//     shared by every package.
//
// # Quick Start
//
//	import (
//	    "github.com/ajitpratap0/hashgrid/pkg/compression"
//	    "github.com/ajitpratap0/hashgrid/pkg/snapshot"
//	    "github.com/ajitpratap0/hashgrid/pkg/table"
//	)
//
//	t := table.New[string, float64]()
//	t.Set("price", 3, 9.99)           // grows the table to four rows
//	t.PushRow(map[string]float64{"qty": 2})
//
//	v, ok := t.Get("price", 0)         // ok == false: the cell is Missing
//	removed, _ := t.RemoveRow(1)       // later rows shift down
//
//	err := snapshot.WriteFile("prices.hgs", t, snapshot.Options{
//	    Compression: compression.Zstd,
//	})
//
// # Configuration
//
// Tables and snapshots can be configured from YAML:
//
//	table:
//	  backing: ordered        # hash or ordered
//	  max_rows: 1000000
//	snapshot:
//	  path: ${DATA_DIR:-.}/prices.hgs
//	  format: json            # json or yaml
//	  compression: zstd
//	  level: better
//	logging:
//	  level: info
//	  encoding: json
//
// # Concurrency
//
// A Table is not safe for concurrent use. Callers that share a table between
// goroutines must provide their own locking.
package hashgrid
