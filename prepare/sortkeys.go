package prepare

import "bufio"
import "bytes"
import "container/heap"
import "fmt"
import "io"
import "os"
import "path/filepath"
import "sort"

import "github.com/bnclabs/golog"
import humanize "github.com/dustin/go-humanize"

import "github.com/bnclabs/hashbt/api"

// External sort for unsorted corpora: decode the text corpus into
// fixed 20-byte records, sort it chunk by chunk in memory, spill each
// chunk as a run file and merge the runs back while feeding the
// builder. Run files live next to the output so they share its
// filesystem.

// sortruns scans the corpus and spills sorted run files, sized by the
// memlimit setting clamped against free system memory.
func (p *Preparer) sortruns(infd *os.File) (runs []string, cleanup func(), err error) {
	memlimit := clampmemlimit(p.memlimit)
	chunk := int(memlimit / api.DigestLen)
	if chunk < 1 {
		chunk = 1
	}

	tmpdir, err := os.MkdirTemp(filepath.Dir(p.outputfile), "hashbt.runs.")
	if err != nil {
		return nil, nil, err
	}
	cleanup = func() { os.RemoveAll(tmpdir) }

	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	scanner := bufio.NewScanner(infd)
	scanner.Buffer(make([]byte, maxline), maxline)
	digests := make([]api.Digest, 0, chunk)

	spill := func() error {
		if len(digests) == 0 {
			return nil
		}
		sort.Slice(digests, func(i, j int) bool {
			return digests[i].Less(digests[j])
		})
		runfile := filepath.Join(tmpdir, fmt.Sprintf("run-%v", len(runs)))
		fd, err := os.Create(runfile)
		if err != nil {
			return err
		}
		w := bufio.NewWriter(fd)
		for i := range digests {
			if _, err := w.Write(digests[i][:]); err != nil {
				fd.Close()
				return err
			}
		}
		if err := w.Flush(); err != nil {
			fd.Close()
			return err
		}
		if err := fd.Close(); err != nil {
			return err
		}
		runs = append(runs, runfile)
		digests = digests[:0]
		return nil
	}

	for scanner.Scan() {
		p.n_lines++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		d, err := parseline(line, p.n_lines)
		if err != nil {
			return nil, nil, err
		}
		digests = append(digests, d)
		if len(digests) == chunk {
			if err := spill(); err != nil {
				return nil, nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if err := spill(); err != nil {
		return nil, nil, err
	}

	log.Infof("%v spilled %v lines into %v runs of up to %v each\n",
		p.logprefix, humanize.Comma(p.n_lines), len(runs),
		humanize.IBytes(uint64(chunk*api.DigestLen)))
	return runs, cleanup, nil
}

// runreader streams one run file of raw digest records.
type runreader struct {
	fd   *os.File
	r    *bufio.Reader
	head api.Digest
	eof  bool
}

func openrun(path string) (*runreader, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rr := &runreader{fd: fd, r: bufio.NewReader(fd)}
	if err := rr.advance(); err != nil {
		fd.Close()
		return nil, err
	}
	return rr, nil
}

func (rr *runreader) advance() error {
	_, err := io.ReadFull(rr.r, rr.head[:])
	if err == io.EOF {
		rr.eof = true
		return nil
	}
	return err
}

// runheap orders run readers by their current head digest.
type runheap []*runreader

func (h runheap) Len() int            { return len(h) }
func (h runheap) Less(i, j int) bool  { return h[i].head.Less(h[j].head) }
func (h runheap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *runheap) Push(x interface{}) { *h = append(*h, x.(*runreader)) }
func (h *runheap) Pop() interface{} {
	old := *h
	n := len(old)
	rr := old[n-1]
	*h = old[:n-1]
	return rr
}

// mergeiterator drains the run files in ascending digest order,
// collapsing duplicates across runs.
type mergeiterator struct {
	p      *Preparer
	h      runheap
	last   api.Digest
	seeded bool
}

func (p *Preparer) newmergeiterator(runs []string) (*mergeiterator, error) {
	it := &mergeiterator{p: p, h: make(runheap, 0, len(runs))}
	for _, run := range runs {
		rr, err := openrun(run)
		if err != nil {
			it.close()
			return nil, err
		}
		if rr.eof {
			rr.fd.Close()
			continue
		}
		it.h = append(it.h, rr)
	}
	heap.Init(&it.h)
	return it, nil
}

func (it *mergeiterator) close() {
	for _, rr := range it.h {
		rr.fd.Close()
	}
	it.h = it.h[:0]
}

func (it *mergeiterator) Next() (api.Digest, bool, error) {
	for len(it.h) > 0 {
		rr := it.h[0]
		d := rr.head
		if err := rr.advance(); err != nil {
			it.close()
			return d, false, err
		}
		if rr.eof {
			heap.Pop(&it.h)
			rr.fd.Close()
		} else {
			heap.Fix(&it.h, 0)
		}

		if it.seeded && d.Compare(it.last) == 0 {
			it.p.n_dups++
			continue
		}
		it.last, it.seeded = d, true
		it.p.countdigest()
		return d, true, nil
	}
	return api.Digest{}, false, nil
}
