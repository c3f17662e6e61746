// Package vision composes template matching and OCR into the perception
// surface the bot loops consume.
package vision

import (
	"image"
	"time"

	"github.com/lastwar-tools/truckbot/internal/cv"
	"github.com/lastwar-tools/truckbot/internal/ocr"
	"github.com/lastwar-tools/truckbot/pkg/templates"
)

// Screen regions on the 720x1560 game resolution.
var (
	// StrengthBox frames the truck strength label in the detail view.
	StrengthBox = image.Rect(200, 950, 300, 1000)
	// ServerBox frames the server tag in the detail view.
	ServerBox = image.Rect(160, 860, 220, 915)
	// TimerRegion frames the squad cooldown timer and the stamina notice.
	TimerRegion = image.Rect(250, 1150, 650, 1300)
)

// TruckTemplate is the registry name of the reindeer truck icon.
const TruckTemplate = "truck_icon"

// Game reads game state off captured frames.
type Game struct {
	reader   *ocr.Reader
	registry *templates.Registry
}

// NewGame creates a Game on top of an OCR reader and a template registry.
func NewGame(reader *ocr.Reader, registry *templates.Registry) *Game {
	return &Game{reader: reader, registry: registry}
}

// FindTrucks locates all reindeer truck icons on screen, in scan order.
// The truck template's low threshold tolerates the icon's animation
// frames; a failed template load reads as no trucks.
func (g *Game) FindTrucks(screen *image.RGBA) []image.Point {
	template, ok := g.registry.Get(TruckTemplate)
	if !ok {
		return nil
	}
	img, err := g.registry.Image(TruckTemplate)
	if err != nil {
		return nil
	}
	return cv.FindAllLocations(screen, img, template.Threshold)
}

// ReadStrength reads the raw strength text from the detail view.
func (g *Game) ReadStrength(detail *image.RGBA) string {
	return g.reader.ReadStrength(detail, StrengthBox)
}

// ReadServer reads the server tag from the detail view, reduced to its
// digits.
func (g *Game) ReadServer(detail *image.RGBA) string {
	text := g.reader.ReadRegion(detail, ServerBox, ocr.ModeSingleLine, ocr.ModeSingleWord)
	return ocr.NormalizeServerDigits(text)
}

// MatchesServer reports whether the detail view names the wanted server.
func (g *Game) MatchesServer(detail *image.RGBA, server string) bool {
	text := g.reader.ReadRegion(detail, ServerBox, ocr.ModeSingleLine, ocr.ModeSingleWord)
	return ocr.ServerMatches(text, server)
}

// HasStaminaOffer reports whether the stamina reward notice is shown in
// the timer region.
func (g *Game) HasStaminaOffer(screen *image.RGBA) bool {
	text := g.reader.ReadRegionEnhanced(screen, TimerRegion, ocr.ModeBlock)
	return ocr.ContainsStaminaNotice(text)
}

// ReadCooldown reads the squad cooldown from the timer region.
func (g *Game) ReadCooldown(screen *image.RGBA) (time.Duration, bool) {
	text := g.reader.ReadRegionEnhanced(screen, TimerRegion, ocr.ModeBlock)
	return ocr.ParseCooldown(text)
}
