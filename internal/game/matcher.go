package game

import (
	"image"
	"image/color"
	"math"
	"slices"
	"sort"
)

// gray is a luminance plane with summed area tables for fast window statistics.
type gray struct {
	w, h  int
	pix   []float64
	sum   []float64 // (w+1)*(h+1)
	sumSq []float64
}

func toGray(img image.Image) *gray {
	b := img.Bounds()
	g := &gray{w: b.Dx(), h: b.Dy()}
	g.pix = make([]float64, g.w*g.h)
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			g.pix[y*g.w+x] = float64(c.Y)
		}
	}
	g.integrate()

	return g
}

func (g *gray) integrate() {
	stride := g.w + 1
	g.sum = make([]float64, stride*(g.h+1))
	g.sumSq = make([]float64, stride*(g.h+1))
	for y := 0; y < g.h; y++ {
		var row, rowSq float64
		for x := 0; x < g.w; x++ {
			v := g.pix[y*g.w+x]
			row += v
			rowSq += v * v
			g.sum[(y+1)*stride+x+1] = g.sum[y*stride+x+1] + row
			g.sumSq[(y+1)*stride+x+1] = g.sumSq[y*stride+x+1] + rowSq
		}
	}
}

func (g *gray) window(x, y, w, h int) (sum, sumSq float64) {
	stride := g.w + 1
	a, b, c, d := y*stride+x, y*stride+x+w, (y+h)*stride+x, (y+h)*stride+x+w

	return g.sum[d] - g.sum[b] - g.sum[c] + g.sum[a], g.sumSq[d] - g.sumSq[b] - g.sumSq[c] + g.sumSq[a]
}

// half box-filters the plane down to half size.
func (g *gray) half() *gray {
	h := &gray{w: g.w / 2, h: g.h / 2}
	h.pix = make([]float64, h.w*h.h)
	for y := 0; y < h.h; y++ {
		for x := 0; x < h.w; x++ {
			i := 2*y*g.w + 2*x
			h.pix[y*h.w+x] = (g.pix[i] + g.pix[i+1] + g.pix[i+g.w] + g.pix[i+g.w+1]) / 4
		}
	}
	h.integrate()

	return h
}

type tmplStats struct {
	mean, norm float64
}

func (g *gray) stats() tmplStats {
	var sum float64
	for _, v := range g.pix {
		sum += v
	}
	mean := sum / float64(len(g.pix))
	var sq float64
	for _, v := range g.pix {
		sq += (v - mean) * (v - mean)
	}

	return tmplStats{mean: mean, norm: math.Sqrt(sq)}
}

// ncc is the normalized cross correlation of t placed at (x, y) in g, in [-1, 1].
func ncc(g, t *gray, ts tmplStats, x, y int) float64 {
	n := float64(t.w * t.h)
	sum, sumSq := g.window(x, y, t.w, t.h)
	variance := sumSq - sum*sum/n
	if variance <= 1e-9 || ts.norm <= 1e-9 {
		// Flat areas only match flat templates of the same brightness.
		if variance <= 1e-9 && ts.norm <= 1e-9 && math.Abs(sum/n-ts.mean) < 1 {
			return 1
		}
		return 0
	}

	var cross float64
	for ty := 0; ty < t.h; ty++ {
		row := (y+ty)*g.w + x
		trow := ty * t.w
		for tx := 0; tx < t.w; tx++ {
			cross += g.pix[row+tx] * (t.pix[trow+tx] - ts.mean)
		}
	}

	return cross / (math.Sqrt(variance) * ts.norm)
}

type candidate struct {
	x, y  int
	score float64
}

const (
	minCoarseSide  = 8
	coarseSlack    = 0.2
	maxRefinements = 8
)

// matchTemplate returns the best position of t inside img and its score. Large searches run on a
// downscaled copy first and only refine the most promising spots at full size.
func matchTemplate(img, tmpl image.Image) (image.Point, float64) {
	return matchGray(toGray(img), toGray(tmpl))
}

func matchGray(g, t *gray) (image.Point, float64) {
	if t.w == 0 || t.h == 0 || t.w > g.w || t.h > g.h {
		return image.Point{}, -1
	}

	if t.w/2 < minCoarseSide || t.h/2 < minCoarseSide {
		return exhaustive(g, t, image.Rect(0, 0, g.w-t.w+1, g.h-t.h+1))
	}

	cg, ct := g.half(), t.half()
	cts := ct.stats()
	// top maxRefinements coarse positions, best first
	cands := make([]candidate, 0, maxRefinements+1)
	for y := 0; y <= cg.h-ct.h; y++ {
		for x := 0; x <= cg.w-ct.w; x++ {
			score := ncc(cg, ct, cts, x, y)
			if len(cands) == maxRefinements && score <= cands[len(cands)-1].score {
				continue
			}
			i := sort.Search(len(cands), func(i int) bool { return cands[i].score < score })
			cands = slices.Insert(cands, i, candidate{x, y, score})
			if len(cands) > maxRefinements {
				cands = cands[:maxRefinements]
			}
		}
	}

	best, bestScore := image.Point{}, -1.0
	for i, c := range cands {
		if i > 0 && c.score < cands[0].score-coarseSlack {
			break
		}
		area := image.Rect(2*c.x-2, 2*c.y-2, 2*c.x+3, 2*c.y+3).Intersect(image.Rect(0, 0, g.w-t.w+1, g.h-t.h+1))
		p, s := exhaustive(g, t, area)
		if s > bestScore {
			best, bestScore = p, s
		}
	}

	return best, bestScore
}

func exhaustive(g, t *gray, area image.Rectangle) (image.Point, float64) {
	ts := t.stats()
	best, bestScore := image.Point{}, -1.0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if s := ncc(g, t, ts, x, y); s > bestScore {
				best, bestScore = image.Pt(x, y), s
			}
		}
	}

	return best, bestScore
}
