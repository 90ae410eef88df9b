//go:build gocv

package region

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"gocv.io/x/gocv"

	"stonktip/pkg/tiperr"
)

func init() {
	Register("opencv", func(threshold uint8) Locator { return NewOpenCVLocator(threshold) })
}

// OpenCVLocator runs the same contour-tree selection through OpenCV.
type OpenCVLocator struct {
	Threshold uint8
}

func NewOpenCVLocator(threshold uint8) *OpenCVLocator {
	return &OpenCVLocator{Threshold: threshold}
}

func (l *OpenCVLocator) Locate(img image.Image) (image.Image, image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, nil, tiperr.NewRegionDetectionError("No contour found in empty image")
	}
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, nil, tiperr.NewRegionDetectionError(fmt.Sprintf("convert image: %v", err))
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(gray, &bin, float32(l.Threshold), 255, gocv.ThresholdBinary)

	padded := gocv.NewMat()
	defer padded.Close()
	gocv.CopyMakeBorder(bin, &padded, 1, 1, 1, 1, gocv.BorderConstant, color.RGBA{255, 255, 255, 255})

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()
	contours := gocv.FindContoursWithParams(padded, &hierarchy, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return nil, nil, tiperr.NewRegionDetectionError(
			fmt.Sprintf("No contour found in %dx%d image", img.Bounds().Dx(), img.Bounds().Dy()))
	}

	type leaf struct {
		idx  int
		area float64
	}
	var leaves []leaf
	for i := 0; i < contours.Size(); i++ {
		// [next, previous, first child, parent]
		if hierarchy.GetVeciAt(0, i)[2] < 0 {
			leaves = append(leaves, leaf{idx: i, area: gocv.ContourArea(contours.At(i))})
		}
	}
	if len(leaves) < 2 {
		return nil, nil, tiperr.NewRegionDetectionError(fmt.Sprintf(
			"Expected at least 2 innermost contours in %dx%d image, found %d",
			img.Bounds().Dx(), img.Bounds().Dy(), len(leaves)))
	}
	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].area > leaves[j].area })

	content, err := l.extract(src, padded, contours, leaves[0].idx)
	if err != nil {
		return nil, nil, err
	}
	header, err := l.extract(src, padded, contours, leaves[1].idx)
	if err != nil {
		return nil, nil, err
	}
	return header, content, nil
}

// extract fills contour idx into a padded mask and copies src through the unpadded view of it.
func (l *OpenCVLocator) extract(src, padded gocv.Mat, contours gocv.PointsVector, idx int) (image.Image, error) {
	mask := gocv.Zeros(padded.Rows(), padded.Cols(), gocv.MatTypeCV8U)
	defer mask.Close()
	gocv.DrawContours(&mask, contours, idx, color.RGBA{255, 255, 255, 255}, -1)

	view := mask.Region(image.Rect(1, 1, src.Cols()+1, src.Rows()+1))
	defer view.Close()

	out := gocv.Zeros(src.Rows(), src.Cols(), src.Type())
	defer out.Close()
	if err := src.CopyToWithMask(&out, view); err != nil {
		return nil, tiperr.NewRegionDetectionError(fmt.Sprintf("apply mask: %v", err))
	}
	res, err := out.ToImage()
	if err != nil {
		return nil, tiperr.NewRegionDetectionError(fmt.Sprintf("convert mask result: %v", err))
	}
	return res, nil
}
