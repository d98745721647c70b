package detect

import (
	"image"
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// Pupil is a classical dark-region pupil detector: threshold near the
// darkest intensity, extract contours, fit an ellipse and score it by
// how well the contour fills it.
type Pupil struct {
	config Config
	mu     sync.Mutex // Protects inference
}

// NewPupil creates a pupil detector with the given parameters.
func NewPupil(cfg Config) *Pupil {
	if cfg.BlurKernel%2 == 0 {
		cfg.BlurKernel++
	}
	return &Pupil{config: cfg}
}

// Detect finds the most pupil-like dark blob inside roi.
func (d *Pupil) Detect(gray gocv.Mat, roi image.Rectangle) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if gray.Empty() {
		return Result{}, ErrEmptyFrame
	}

	bounds := image.Rect(0, 0, gray.Cols(), gray.Rows())
	roi = roi.Intersect(bounds)
	if roi.Empty() {
		roi = bounds
	}

	region := gray.Region(roi)
	defer region.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.MedianBlur(region, &blurred, d.config.BlurKernel)

	// The pupil is the darkest structure in an IR eye image; threshold
	// a band above the global minimum.
	minVal, _, _, _ := gocv.MinMaxLoc(blurred)
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(blurred, &mask, minVal+float32(d.config.IntensityRange), 255, gocv.ThresholdBinaryInv)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var best Result
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if contour.Size() < 5 {
			// FitEllipse needs at least five points
			continue
		}

		fitted := gocv.FitEllipse(contour)
		major := fitted.Width
		if fitted.Height > major {
			major = fitted.Height
		}
		if major < d.config.PupilSizeMin || major > d.config.PupilSizeMax {
			continue
		}

		ellipse := Ellipse{
			Center: image.Pt(fitted.Center.X+roi.Min.X, fitted.Center.Y+roi.Min.Y),
			Axes:   image.Pt(fitted.Width, fitted.Height),
			Angle:  fitted.Angle,
		}

		if d.config.CoarseDetection {
			return Result{Confidence: 1, Ellipse: ellipse}, nil
		}

		confidence := supportRatio(gocv.ContourArea(contour), fitted)
		if confidence > best.Confidence {
			best = Result{Confidence: confidence, Ellipse: ellipse}
		}
	}

	return best, nil
}

// Close releases the detector resources
func (d *Pupil) Close() error {
	return nil
}

// supportRatio scores a candidate by the fraction of the fitted
// ellipse covered by the contour, clamped to [0,1].
func supportRatio(contourArea float64, fitted gocv.RotatedRect) float64 {
	ellipseArea := math.Pi * float64(fitted.Width) / 2 * float64(fitted.Height) / 2
	if ellipseArea <= 0 {
		return 0
	}
	ratio := contourArea / ellipseArea
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}
