package painter

import (
	"math/rand/v2"

	"github.com/lox/unplugged/internal/artstyle"
	"github.com/lox/unplugged/internal/models"
)

// Scene is everything the renderer needs for one image.
type Scene struct {
	Genre       artstyle.Genre
	Description models.Description
	Params      artstyle.DrawingParams
}

// Paint draws the genre composition, the atmospheric wash and any weather
// particles onto a surface whose background is already filled, and returns
// the same surface. Out-of-range parameters degrade the image but never
// fail.
func Paint(rng *rand.Rand, s *Surface, sc Scene) *Surface {
	b := &brush{
		s:   s,
		rng: rng,
		pal: parseSwatches(sc.Params.ColorPalette),
		p:   sc.Params,
	}

	switch sc.Genre {
	case artstyle.GenreImpressionism:
		b.impressionism()
	case artstyle.GenreAbstractExpressionism:
		b.abstractExpressionism()
	case artstyle.GenreWatercolor:
		b.watercolor()
	case artstyle.GenreGeometricAbstract:
		b.geometric()
	case artstyle.GenreMinimalism:
		b.minimalism()
	case artstyle.GenrePointillism:
		b.pointillism()
	case artstyle.GenreGlitchArt:
		b.glitch()
	case artstyle.GenreLineArt:
		b.lineArt()
	default:
		// Fauvism, Pop Art, Surrealism, Expressionism and any future genre.
		b.abstract()
	}

	b.atmosphere()

	switch d := sc.Description; {
	case d.IsRainy():
		b.rain()
	case d.IsSnowy():
		b.snow()
	case d.IsFoggy():
		b.fog()
	}
	return s
}

// HasDedicatedAlgorithm reports whether genre renders with its own
// algorithm rather than the abstract composite.
func HasDedicatedAlgorithm(genre artstyle.Genre) bool {
	switch genre {
	case artstyle.GenreImpressionism,
		artstyle.GenreAbstractExpressionism,
		artstyle.GenreWatercolor,
		artstyle.GenreGeometricAbstract,
		artstyle.GenreMinimalism,
		artstyle.GenrePointillism,
		artstyle.GenreGlitchArt,
		artstyle.GenreLineArt:
		return true
	}
	return false
}
