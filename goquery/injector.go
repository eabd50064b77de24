package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	xclipper "github.com/ochanuco/x-clipper"
)

// ControlMarkerClass marks a post container that already carries the
// capture control. Planning skips marked containers so re-scans after DOM
// mutation stay idempotent.
const ControlMarkerClass = "x-clipper-save-button"

// Placement names the strategy used to attach a capture control.
type Placement string

// Placement values, in preference order. Placement never fails outright:
// when no better anchor exists the control is appended to the container.
const (
	PlacementActionCluster     Placement = "action-cluster"
	PlacementBeforeInteractive Placement = "before-interactive"
	PlacementAppend            Placement = "append"
)

// InjectionPoint describes where to attach one capture control.
type InjectionPoint struct {
	// ContainerIndex is the post container's position in document order.
	ContainerIndex int

	// Placement is the chosen attachment strategy.
	Placement Placement

	// PostURL is the container's permalink when one is resolvable,
	// letting callers skip posts that were already captured.
	PostURL string
}

// Injector plans capture control placement for every post container on a
// page. It holds no state; idempotence comes from the marker class check,
// so the same Injector can serve every mutation-triggered re-scan.
type Injector struct {
	seen xclipper.SeenFilter
}

// NewInjector creates a new Injector. The seen filter is optional; when
// set, containers whose permalink was already captured yield no point.
func NewInjector(seen xclipper.SeenFilter) *Injector {
	return &Injector{seen: seen}
}

// Plan returns one injection point per unmarked post container, in
// document order. pageURL anchors permalink resolution.
func (i *Injector) Plan(rawHTML, pageURL string) ([]InjectionPoint, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, xclipper.Errorf(xclipper.EINVALID, "failed to parse HTML: %v", err)
	}

	origin := pageOrigin(pageURL)

	var points []InjectionPoint
	doc.Find(postContainerSelector).Each(func(index int, container *goquery.Selection) {
		if container.Find("."+ControlMarkerClass).Length() > 0 {
			return
		}

		postURL := containerPermalink(container, pageURL, origin)
		if i.seen != nil && postURL != "" && i.seen.SeenURL(postURL) {
			return
		}

		points = append(points, InjectionPoint{
			ContainerIndex: index,
			Placement:      choosePlacement(container),
			PostURL:        postURL,
		})
	})
	return points, nil
}

// choosePlacement picks the best attachment strategy for one container.
func choosePlacement(container *goquery.Selection) Placement {
	actionCluster := container.Find(`[role="group"], [data-testid="tweetAction"], div[aria-label]`).First()
	if actionCluster.Length() > 0 {
		return PlacementActionCluster
	}
	// Without layout information the last interactive element in document
	// order stands in for the rightmost one.
	if container.Find(`button, [role="button"], a`).Length() > 0 {
		return PlacementBeforeInteractive
	}
	return PlacementAppend
}

// containerPermalink resolves the container's timestamp anchor to an
// absolute permalink, or empty when the container carries none.
func containerPermalink(container *goquery.Selection, pageURL, origin string) string {
	timeEl := container.Find("time").First()
	if timeEl.Length() == 0 {
		return ""
	}
	anchor := timeEl.Closest("a[href]")
	if anchor.Length() == 0 {
		return ""
	}
	href, _ := anchor.Attr("href")
	if href == "" {
		return ""
	}
	return resolveAgainst(origin, pageURL, href)
}
