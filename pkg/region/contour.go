package region

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/disintegration/imaging"

	"stonktip/pkg/tiperr"
)

// component is one connected region of the padded binary image. Every component is
// bounded by exactly one contour, so the component tree doubles as the contour hierarchy.
type component struct {
	id       int
	white    bool
	pixels   []int // padded raster offsets, discovery order
	parent   int   // -1 for the frame
	children int
}

// hierarchy is the component tree of a padded binary image.
type hierarchy struct {
	img    *binaryImage
	labels []int
	comps  []*component
}

var (
	offsets4 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	offsets8 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	// ring8 walks the 8-neighbourhood counterclockwise on screen, starting east (y grows down).
	ring8 = [8][2]int{{1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1}}
)

// buildHierarchy labels components (white 8-connected, black 4-connected) in raster order
// and links each one to the enclosing component reached first from the frame.
func buildHierarchy(b *binaryImage) *hierarchy {
	h := &hierarchy{img: b, labels: make([]int, len(b.pix))}
	for i := range h.labels {
		h.labels[i] = -1
	}
	queue := make([]int, 0, 256)
	for start := range b.pix {
		if h.labels[start] >= 0 {
			continue
		}
		c := &component{id: len(h.comps), white: b.pix[start], parent: -1}
		nbrs := offsets4
		if c.white {
			nbrs = offsets8
		}
		h.labels[start] = c.id
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			c.pixels = append(c.pixels, p)
			x, y := p%b.w, p/b.w
			for _, d := range nbrs {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= b.w || ny >= b.h {
					continue
				}
				q := ny*b.w + nx
				if h.labels[q] < 0 && b.pix[q] == c.white {
					h.labels[q] = c.id
					queue = append(queue, q)
				}
			}
		}
		h.comps = append(h.comps, c)
	}
	h.link()
	return h
}

// link derives parent/child relations with a breadth-first walk of the 4-adjacency graph
// rooted at the frame component.
func (h *hierarchy) link() {
	if len(h.comps) == 0 {
		return
	}
	b := h.img
	adj := make([]map[int]struct{}, len(h.comps))
	addEdge := func(a, c int) {
		if adj[a] == nil {
			adj[a] = map[int]struct{}{}
		}
		adj[a][c] = struct{}{}
	}
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			l := h.labels[y*b.w+x]
			if x+1 < b.w {
				if r := h.labels[y*b.w+x+1]; r != l {
					addEdge(l, r)
					addEdge(r, l)
				}
			}
			if y+1 < b.h {
				if d := h.labels[(y+1)*b.w+x]; d != l {
					addEdge(l, d)
					addEdge(d, l)
				}
			}
		}
	}
	visited := make([]bool, len(h.comps))
	root := h.labels[0]
	visited[root] = true
	queue := []int{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		next := make([]int, 0, len(adj[cur]))
		for n := range adj[cur] {
			if !visited[n] {
				next = append(next, n)
			}
		}
		sort.Ints(next)
		for _, n := range next {
			visited[n] = true
			h.comps[n].parent = cur
			h.comps[cur].children++
			queue = append(queue, n)
		}
	}
}

// leaves returns the innermost components in discovery order.
func (h *hierarchy) leaves() []*component {
	var out []*component
	for _, c := range h.comps {
		if c.children == 0 {
			out = append(out, c)
		}
	}
	return out
}

// fill returns the padded offsets inside the filled contour of c. A hole's contour runs
// through the surrounding white pixels, so its fill includes that ring.
func (h *hierarchy) fill(c *component) []int {
	if c.white {
		return c.pixels
	}
	b := h.img
	seen := make(map[int]struct{}, len(c.pixels))
	out := make([]int, 0, len(c.pixels)*2)
	for _, p := range c.pixels {
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range c.pixels {
		x, y := p%b.w, p/b.w
		for _, d := range offsets8 {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx >= b.w || ny >= b.h {
				continue
			}
			q := ny*b.w + nx
			if _, ok := seen[q]; ok {
				continue
			}
			if h.labels[q] != c.id {
				seen[q] = struct{}{}
				out = append(out, q)
			}
		}
	}
	return out
}

func ringIndex(dx, dy int) int {
	for i, d := range ring8 {
		if d[0] == dx && d[1] == dy {
			return i
		}
	}
	return 0
}

func (h *hierarchy) white(x, y int) bool {
	b := h.img
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return false
	}
	return b.pix[y*b.w+x]
}

// border follows the contour of c with Suzuki-Abe border following and returns its
// vertices as padded pixel coordinates. An outer border runs over c's own pixels; a hole
// border runs over the white pixels around the hole.
func (h *hierarchy) border(c *component) [][2]int {
	first := c.pixels[0]
	x0, y0 := first%h.img.w, first/h.img.w
	// (sx,sy) starts the border, (px,py) is the zero pixel next to it
	sx, sy, px, py := x0, y0, x0-1, y0
	if !c.white {
		sx, sy, px, py = x0-1, y0, x0, y0
	}

	d := ringIndex(px-sx, py-sy)
	found := -1
	for k := 0; k < 8; k++ {
		nd := (d - k + 8) % 8
		if h.white(sx+ring8[nd][0], sy+ring8[nd][1]) {
			found = nd
			break
		}
	}
	if found < 0 {
		return [][2]int{{sx, sy}}
	}
	x1, y1 := sx+ring8[found][0], sy+ring8[found][1]
	x2, y2 := x1, y1
	x3, y3 := sx, sy
	var pts [][2]int
	for n := 0; n < 2*len(h.img.pix)+8; n++ {
		d := ringIndex(x2-x3, y2-y3)
		x4, y4 := x2, y2
		for k := 1; k <= 8; k++ {
			nd := (d + k) % 8
			if h.white(x3+ring8[nd][0], y3+ring8[nd][1]) {
				x4, y4 = x3+ring8[nd][0], y3+ring8[nd][1]
				break
			}
		}
		pts = append(pts, [2]int{x3, y3})
		if x4 == sx && y4 == sy && x3 == x1 && y3 == y1 {
			break
		}
		x2, y2 = x3, y3
		x3, y3 = x4, y4
	}
	return pts
}

// polygonArea is the shoelace area of a closed vertex list.
func polygonArea(pts [][2]int) float64 {
	s := 0
	for i := range pts {
		j := (i + 1) % len(pts)
		s += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	return math.Abs(float64(s)) / 2
}

// ContourLocator is the pure-Go locator: binarize, pad, build the contour tree, keep the
// two leaves with the largest contour area.
type ContourLocator struct {
	Threshold uint8
}

func NewContourLocator(threshold uint8) *ContourLocator {
	return &ContourLocator{Threshold: threshold}
}

func (l *ContourLocator) Locate(img image.Image) (image.Image, image.Image, error) {
	if img == nil {
		return nil, nil, tiperr.NewRegionDetectionError("no image")
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, nil, tiperr.NewRegionDetectionError(fmt.Sprintf("No contour found in %dx%d image", w, h))
	}
	padded := pad(binarize(img, l.Threshold))
	tree := buildHierarchy(padded)
	if len(tree.comps) == 0 {
		return nil, nil, tiperr.NewRegionDetectionError(fmt.Sprintf("No contour found in %dx%d image", w, h))
	}
	leaves := tree.leaves()
	if len(leaves) < 2 {
		return nil, nil, tiperr.NewRegionDetectionError(
			fmt.Sprintf("Expected at least 2 innermost contours in %dx%d image, found %d", w, h, len(leaves)))
	}

	type candidate struct {
		area float64
		fill []int
	}
	cands := make([]candidate, len(leaves))
	for i, c := range leaves {
		cands[i] = candidate{area: polygonArea(tree.border(c)), fill: tree.fill(c)}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].area > cands[j].area })

	src := imaging.Clone(img)
	content := maskTo(src, cands[0].fill, padded.w)
	header := maskTo(src, cands[1].fill, padded.w)
	return header, content, nil
}

// maskTo copies src pixels at the given padded offsets onto a black canvas of src's size.
func maskTo(src *image.NRGBA, fill []int, paddedW int) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := imaging.New(w, h, color.NRGBA{0, 0, 0, 255})
	for _, p := range fill {
		x, y := p%paddedW-1, p/paddedW-1
		if x < 0 || y < 0 || x >= w || y >= h {
			continue
		}
		si := y*src.Stride + x*4
		copy(out.Pix[si:si+4], src.Pix[si:si+4])
	}
	return out
}
