// Package deckpdf exports web-hosted slide presentations to PDF.
//
// It opens the presentation in Chrome, drives the viewer's own navigation
// controls from the first slide to the last, screenshots every slide and
// stitches the screenshots into a landscape PDF, one page per slide.
// Supported viewers are Pitch, DocSend and Papermark; see [Profiles].
//
// # Exporting
//
// For one-off exports use the package-level helper:
//
//	res, err := deckpdf.Export(ctx, "https://pitch.com/v/my-deck")
//
// For repeated exports create an [Exporter], which reuses the browser process:
//
//	e, err := deckpdf.NewExporter(deckpdf.WithNoSandbox())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Close()
//
//	res, err := e.Export(ctx, "https://docsend.com/view/abc123")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res.WriteToFile("presentation.pdf", 0o644)
//
// A slide whose screenshot fails is left out of the PDF rather than
// aborting the export; [Result.Skipped] lists such slides. Detection,
// rewinding and navigation errors abort the export and can be told apart
// with [errors.Is] against [ErrUnsupportedSite], [ErrElementNotFound],
// [ErrParse] and [ErrNavigationTimeout].
//
// # Driving a viewer
//
// [Exporter.Open] returns a [Session] whose embedded [Driver] reads the
// slide indicator and clicks the viewer's controls:
//
//	s, err := e.Open(ctx, url)
//	info, err := s.Info(ctx) // SlideInfo{Current, Total}
//	err = s.Next(ctx)
//	err = s.WaitForSlide(ctx, info.Current+1)
//
// Viewers that gate decks behind a login can be exported from a Chrome the
// user is already signed in to with [WithRemoteURL]; a tab already showing
// the deck is driven in place. [WithStealth] switches to a go-rod backend
// with automation fingerprints removed.
//
// # Output
//
// [Assemble] turns any ordered list of PNG or JPEG images into the same PDF
// layout, and [Inspect] validates a PDF and reports its pages.
package deckpdf
