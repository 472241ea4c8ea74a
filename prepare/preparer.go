package prepare

import "bufio"
import "bytes"
import "fmt"
import "os"
import "time"

import sigar "github.com/cloudfoundry/gosigar"
import "github.com/bnclabs/golog"
import s "github.com/bnclabs/gosettings"
import humanize "github.com/dustin/go-humanize"

import "github.com/bnclabs/hashbt/api"
import "github.com/bnclabs/hashbt/btree"
import "github.com/bnclabs/hashbt/flock"

// maxline bounds a single corpus line; real corpus lines are a digest
// plus a prevalence count, well under 64 bytes.
const maxline = 1024

// progress interval in digests.
const progressevery = 10000000

// Preparer turns a text corpus of SHA-1 digests, one 40 hexadecimal
// character digest per line with an optional ":count" suffix, into
// the persisted btree that Snapshot queries. The output file's lock
// is held exclusive for the duration, so another preparer on the same
// output waits until the tree is complete. Snapshots do not take the
// lock.
type Preparer struct {
	name       string
	inputfile  string
	outputfile string
	order      int64
	memlimit   int64
	sorted     bool
	logprefix  string

	n_digests int64
	n_dups    int64
	n_lines   int64
}

// NewPreparer returns a preparer reading the corpus at inputfile and
// producing the btree at outputfile. Settings: see DefaultSettings().
func NewPreparer(name, inputfile, outputfile string, setts s.Settings) *Preparer {
	p := &Preparer{
		name:       name,
		inputfile:  inputfile,
		outputfile: outputfile,
		order:      setts.Int64("order"),
		memlimit:   setts.Int64("memlimit"),
		sorted:     setts.Bool("sorted"),
	}
	p.logprefix = fmt.Sprintf("[PREP-%s]", name)
	return p
}

// Prepare runs the pipeline: scan the corpus, sort it if needed, bulk
// load the btree and flush it. The produced file is complete once
// Prepare returns nil.
func (p *Preparer) Prepare() error {
	start := time.Now()

	lock, err := flock.New(p.outputfile + ".lock")
	if err != nil {
		return err
	}
	lock.Lock()
	defer lock.Unlock()

	infd, err := os.Open(p.inputfile)
	if err != nil {
		return err
	}
	defer infd.Close()

	outfd, err := os.Create(p.outputfile)
	if err != nil {
		return err
	}
	defer outfd.Close()

	var iter api.DigestIterator
	if p.sorted {
		iter = p.newtextiterator(infd)
	} else {
		runs, cleanup, err := p.sortruns(infd)
		if err != nil {
			return err
		}
		defer cleanup()
		if iter, err = p.newmergeiterator(runs); err != nil {
			return err
		}
	}

	bt, err := btree.NewBuilder(outfd, p.name, s.Settings{"order": p.order})
	if err != nil {
		return err
	}
	if err := bt.Build(iter); err != nil {
		return err
	}
	if err := bt.Finalize(); err != nil {
		return err
	}
	if err := outfd.Sync(); err != nil {
		return err
	}

	fi, err := outfd.Stat()
	if err != nil {
		return err
	}
	log.Infof("%v prepared %v digests (%v duplicates dropped) into %v, took %v\n",
		p.logprefix, humanize.Comma(p.n_digests), humanize.Comma(p.n_dups),
		humanize.IBytes(uint64(fi.Size())), time.Since(start).Round(time.Millisecond))
	return nil
}

// Stats returns the preparer's figures, meaningful once Prepare has
// returned.
func (p *Preparer) Stats() map[string]interface{} {
	return map[string]interface{}{
		"n_lines":   p.n_lines,
		"n_digests": p.n_digests,
		"n_dups":    p.n_dups,
	}
}

// parseline decodes the leading 40 hexadecimal characters of a corpus
// line. A ":count" suffix and a stray carriage return are ignored;
// any other text after the digest is an error.
func parseline(line []byte, lineno int64) (api.Digest, error) {
	line = bytes.TrimRight(line, "\r")
	if len(line) < api.TextDigestLen {
		var d api.Digest
		return d, fmt.Errorf("hashbt.prepare.shortline: %v", lineno)
	}
	if len(line) > api.TextDigestLen && line[api.TextDigestLen] != ':' {
		var d api.Digest
		return d, fmt.Errorf("hashbt.prepare.badline: %v", lineno)
	}
	d, err := api.ParseDigest(string(line[:api.TextDigestLen]))
	if err != nil {
		return d, fmt.Errorf("%v at line %v", err, lineno)
	}
	return d, nil
}

// textiterator streams an already sorted corpus straight into the
// builder, dropping duplicates and rejecting out of order lines.
type textiterator struct {
	p       *Preparer
	scanner *bufio.Scanner
	last    api.Digest
	seeded  bool
}

func (p *Preparer) newtextiterator(infd *os.File) *textiterator {
	scanner := bufio.NewScanner(infd)
	scanner.Buffer(make([]byte, maxline), maxline)
	return &textiterator{p: p, scanner: scanner}
}

func (it *textiterator) Next() (api.Digest, bool, error) {
	for it.scanner.Scan() {
		it.p.n_lines++
		line := it.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		d, err := parseline(line, it.p.n_lines)
		if err != nil {
			return d, false, err
		}
		if it.seeded {
			switch d.Compare(it.last) {
			case 0:
				it.p.n_dups++
				continue
			case -1:
				return d, false, fmt.Errorf("hashbt.prepare.unsorted: line %v", it.p.n_lines)
			}
		}
		it.last, it.seeded = d, true
		it.p.countdigest()
		return d, true, nil
	}
	return api.Digest{}, false, it.scanner.Err()
}

func (p *Preparer) countdigest() {
	p.n_digests++
	if p.n_digests%progressevery == 0 {
		log.Infof("%v scanned %v digests ...\n", p.logprefix, humanize.Comma(p.n_digests))
	}
}

// clampmemlimit keeps the sort chunk within half the actually free
// system memory, when that can be determined.
func clampmemlimit(memlimit int64) int64 {
	mem := sigar.Mem{}
	if err := mem.Get(); err != nil {
		return memlimit
	}
	if free := int64(mem.ActualFree) / 2; free > 0 && memlimit > free {
		return free
	}
	return memlimit
}
