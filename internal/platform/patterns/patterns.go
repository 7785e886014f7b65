// Package patterns generates the small cursor shapes traced in jitter mode
// and tracks whether the user is touching the mouse.
package patterns

import (
	"math"
	"math/rand"
	"time"
)

const (
	// Shape size in pixels.
	MouseMinSizePixels = 5.0
	MouseMaxSizePixels = 20.0

	// Base step delay, before scaling into the cycle's movement budget.
	MouseBaseDelayMinSeconds = 0.005
	MouseBaseDelayMaxSeconds = 0.12
	MouseReturnDelayMin      = 0.01
	MouseReturnDelayMax      = 0.05

	MousePauseProbability        = 0.12
	MousePauseDurationMin        = 0.15
	MousePauseDurationMax        = 0.4
	MouseIntermediateProbability = 0.35
	MouseIntermediateDistanceMin = 8.0

	MouseSpeedFactorMin        = 0.7
	MouseSpeedFactorMax        = 1.3
	MouseSpeedFactorLongDist   = 1.2
	MouseLongDistanceThreshold = 10.0

	MouseIntermediatePositionFactor = 0.4
	MouseIntermediateJitter         = 1.5
	MouseIntermediateSpeedMin       = 0.6
	MouseIntermediateSpeedMax       = 1.4
)

// Point is an offset from the cursor's starting position.
type Point struct {
	X float64
	Y float64
}

// Step is one cursor placement followed by a delay.
type Step struct {
	Offset Point
	Delay  time.Duration
}

// Generator generates natural mouse movement patterns.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator creates a new pattern generator with a random source.
func NewGenerator(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// GenerateShapePoints returns a random shape as offsets from (0,0).
func (g *Generator) GenerateShapePoints() []Point {
	shapeType := g.rnd.Intn(4) // 0=circle, 1=square, 2=zigzag, 3=random walk

	size := MouseMinSizePixels + g.rnd.Float64()*(MouseMaxSizePixels-MouseMinSizePixels)
	numPoints := 4 + g.rnd.Intn(8)

	switch shapeType {
	case 0:
		return g.buildCirclePoints(numPoints, size)
	case 1:
		return g.buildSquarePoints(numPoints, size)
	case 2:
		return g.buildZigZagPoints(numPoints, size)
	default:
		return g.buildRandomWalkPoints(numPoints, size)
	}
}

func (g *Generator) buildCirclePoints(numPoints int, size float64) []Point {
	points := make([]Point, 0, numPoints)
	for i := 0; i < numPoints; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numPoints)
		points = append(points, Point{
			X: size * math.Cos(angle),
			Y: size * math.Sin(angle),
		})
	}
	return points
}

func (g *Generator) buildSquarePoints(numPoints int, size float64) []Point {
	side := int(math.Sqrt(float64(numPoints)))
	if side < 2 {
		side = 2
	}

	points := make([]Point, 0, side*4)
	for i := 0; i < side; i++ {
		points = append(points, Point{X: size * float64(i) / float64(side-1), Y: 0})
	}
	for i := 1; i < side; i++ {
		points = append(points, Point{X: size, Y: size * float64(i) / float64(side-1)})
	}
	for i := side - 2; i >= 0; i-- {
		points = append(points, Point{X: size * float64(i) / float64(side-1), Y: size})
	}
	for i := side - 2; i > 0; i-- {
		points = append(points, Point{X: 0, Y: size * float64(i) / float64(side-1)})
	}
	return points
}

func (g *Generator) buildZigZagPoints(numPoints int, size float64) []Point {
	points := make([]Point, 0, numPoints)
	for i := 0; i < numPoints; i++ {
		x := size * float64(i) / float64(numPoints-1)
		y := size * 0.5
		if i%2 == 0 {
			y = -size * 0.5
		}
		points = append(points, Point{X: x, Y: y})
	}
	return points
}

func (g *Generator) buildRandomWalkPoints(numPoints int, size float64) []Point {
	points := make([]Point, 0, numPoints)
	x, y := 0.0, 0.0
	points = append(points, Point{X: 0, Y: 0})
	step := size / 3

	for i := 1; i < numPoints; i++ {
		angle := g.rnd.Float64() * 2 * math.Pi
		x += step * math.Cos(angle)
		y += step * math.Sin(angle)
		points = append(points, Point{X: x, Y: y})
	}
	return points
}

// SegmentDistance is the distance from points[i] to the next point, or back
// to the origin for the last one.
func SegmentDistance(points []Point, i int) float64 {
	if len(points) == 0 || i >= len(points) {
		return 0
	}

	pt := points[i]
	if i < len(points)-1 {
		next := points[i+1]
		dx := next.X - pt.X
		dy := next.Y - pt.Y
		return math.Sqrt(dx*dx + dy*dy)
	}
	return math.Sqrt(pt.X*pt.X + pt.Y*pt.Y)
}

// MovementDelay calculates a natural movement delay based on distance.
func (g *Generator) MovementDelay(distance float64) time.Duration {
	baseRange := MouseBaseDelayMaxSeconds - MouseBaseDelayMinSeconds
	baseDelay := MouseBaseDelayMinSeconds + g.rnd.Float64()*baseRange

	speedFactor := MouseSpeedFactorMin + g.rnd.Float64()*(MouseSpeedFactorMax-MouseSpeedFactorMin)
	if distance > MouseLongDistanceThreshold {
		speedFactor *= MouseSpeedFactorLongDist
	}

	return time.Duration(baseDelay * speedFactor * float64(time.Second))
}

// ShouldPause determines if a pause should be inserted.
func (g *Generator) ShouldPause() bool {
	return g.rnd.Float64() < MousePauseProbability
}

// PauseDelay returns a random pause duration.
func (g *Generator) PauseDelay() time.Duration {
	rangeSeconds := MousePauseDurationMax - MousePauseDurationMin
	return time.Duration((MousePauseDurationMin + g.rnd.Float64()*rangeSeconds) * float64(time.Second))
}

// ShouldAddIntermediate determines if an intermediate point should follow points[i].
func (g *Generator) ShouldAddIntermediate(points []Point, i int, distance float64) bool {
	if i >= len(points)-1 {
		return false
	}
	if distance <= MouseIntermediateDistanceMin {
		return false
	}
	return g.rnd.Float64() < MouseIntermediateProbability
}

// IntermediatePoint returns a point partway to points[i+1] with some jitter.
func (g *Generator) IntermediatePoint(points []Point, i int, baseDelay time.Duration) (Point, time.Duration) {
	pt := points[i]
	next := points[i+1]

	midX := pt.X + (next.X-pt.X)*MouseIntermediatePositionFactor + (g.rnd.Float64()-0.5)*MouseIntermediateJitter
	midY := pt.Y + (next.Y-pt.Y)*MouseIntermediatePositionFactor + (g.rnd.Float64()-0.5)*MouseIntermediateJitter

	speedVariation := MouseIntermediateSpeedMin + g.rnd.Float64()*(MouseIntermediateSpeedMax-MouseIntermediateSpeedMin)
	return Point{X: midX, Y: midY}, time.Duration(float64(baseDelay) * speedVariation)
}

// ReturnDelay returns a random delay for returning to origin.
func (g *Generator) ReturnDelay() time.Duration {
	delaySeconds := MouseReturnDelayMin + g.rnd.Float64()*(MouseReturnDelayMax-MouseReturnDelayMin)
	return time.Duration(delaySeconds * float64(time.Second))
}

// Plan turns a fresh shape into timed steps whose delays add up to budget.
// The final step always returns to the origin.
func (g *Generator) Plan(budget time.Duration) []Step {
	points := g.GenerateShapePoints()
	steps := make([]Step, 0, len(points)*2+1)

	var total time.Duration
	add := func(p Point, d time.Duration) {
		steps = append(steps, Step{Offset: p, Delay: d})
		total += d
	}

	for i, pt := range points {
		distance := SegmentDistance(points, i)
		delay := g.MovementDelay(distance)
		if g.ShouldPause() {
			delay += g.PauseDelay()
		}
		add(pt, delay)

		if g.ShouldAddIntermediate(points, i, distance) {
			mid, midDelay := g.IntermediatePoint(points, i, delay)
			add(mid, midDelay)
		}
	}
	add(Point{}, g.ReturnDelay())

	if budget <= 0 || total <= 0 {
		for i := range steps {
			steps[i].Delay = 0
		}
		return steps
	}

	scale := float64(budget) / float64(total)
	for i := range steps {
		steps[i].Delay = time.Duration(float64(steps[i].Delay) * scale)
	}
	return steps
}
