// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/msnrbf/nrbf/internal/log"
)

// Options configures a Parser.
type Options struct {
	// ResolveMode selects how Parse resolves MemberReference
	// placeholders. Defaults to ResolveInPlace.
	ResolveMode ResolveMode

	// SkipCycles, when ResolveMode is ResolveExpand, replaces a
	// detected cycle with a CyclicStubValue instead of failing the
	// parse outright.
	SkipCycles bool

	// Logger receives the parser's log records: Parse logs each decode
	// failure at Error level, and records below Error level are
	// filtered out. A stdout logger is used when nil.
	Logger log.Logger
}

// Parser owns one input buffer and the options governing how it is
// decoded: a struct holding the input plus options, constructed by
// New or NewBytes and released by Close.
type Parser struct {
	data   []byte
	opts   *Options
	logger *log.Helper
	mm     mmap.MMap
	f      *os.File
}

// New memory-maps the file at name and returns a Parser over it.
func New(name string, opts *Options) (*Parser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	p := newParser(opts)
	p.data = data
	p.mm = data
	p.f = f
	return p, nil
}

// NewBytes returns a Parser over an already-materialized buffer: the
// entry point for base64-decoded input or fuzz corpora.
func NewBytes(data []byte, opts *Options) *Parser {
	p := newParser(opts)
	p.data = data
	return p
}

func newParser(opts *Options) *Parser {
	if opts == nil {
		opts = &Options{}
	}
	var logger log.Logger
	if opts.Logger == nil {
		logger = log.NewStdLogger(os.Stdout)
	} else {
		logger = opts.Logger
	}
	return &Parser{
		opts:   opts,
		logger: log.NewHelper(log.NewFilter(logger, log.FilterLevel(log.LevelError))),
	}
}

// Close releases the mmap'd buffer and backing file handle, if any.
func (p *Parser) Close() error {
	if p.mm != nil {
		_ = p.mm.Unmap()
	}
	if p.f != nil {
		return p.f.Close()
	}
	return nil
}

// Parse runs the RecordDispatcher from INITIAL through TERMINATED,
// then the ReferenceResolver in the configured mode, and returns the
// value tree rooted at the header's root id.
func (p *Parser) Parse() (Value, error) {
	d := newDispatcher(p.data)

	for {
		kind, _, err := d.readTopLevelRecord()
		if err != nil {
			p.logger.Errorf("parse failed at offset %d: %v", d.r.Pos(), err)
			return nil, err
		}
		if kind == RecordMessageEnd {
			break
		}
	}

	switch p.opts.ResolveMode {
	case ResolveExpand:
		return resolveExpand(d.tables, d.header.RootID, p.opts.SkipCycles)
	default:
		if err := resolveInPlace(d.tables); err != nil {
			return nil, err
		}
		return d.tables.lookupObject(d.header.RootID, d.r.Pos())
	}
}

// RecordIterator yields each top-level record lazily. It is finite
// (ends once MessageEnd is read) and not restartable.
type RecordIterator struct {
	d    *dispatcher
	done bool
}

// IterRecords returns a RecordIterator over the Parser's buffer.
// Unlike Parse, no reference resolution is performed: each record's
// raw value (which may contain unresolved ReferenceValue placeholders)
// is handed back as soon as it is decoded.
func (p *Parser) IterRecords() *RecordIterator {
	return &RecordIterator{d: newDispatcher(p.data)}
}

// Next decodes and returns the next top-level record. ok is false
// once MessageEnd has been consumed; err is non-nil on any decode
// failure, which also ends iteration.
func (it *RecordIterator) Next() (kind RecordTypeEnumeration, val Value, ok bool, err error) {
	if it.done {
		return 0, nil, false, nil
	}
	kind, val, err = it.d.readTopLevelRecord()
	if err != nil {
		it.done = true
		return 0, nil, false, err
	}
	if kind == RecordMessageEnd {
		it.done = true
		return kind, val, false, nil
	}
	return kind, val, true, nil
}
