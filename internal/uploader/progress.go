package uploader

import "io"

// progressReader reports transfer progress as a monotonically increasing
// percentage of bytes read from the underlying request body.
type progressReader struct {
	r        io.Reader
	total    int64
	sent     int64
	lastPct  int
	onChange func(pct int)
}

func newProgressReader(r io.Reader, total int64, onChange func(pct int)) *progressReader {
	return &progressReader{r: r, total: total, onChange: onChange}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 && p.total > 0 {
		p.sent += int64(n)
		pct := int(p.sent * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.lastPct {
			p.lastPct = pct
			if p.onChange != nil {
				p.onChange(pct)
			}
		}
	}
	return n, err
}
