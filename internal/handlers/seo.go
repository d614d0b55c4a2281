package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trackrate/internal/services"
)

type SEOHandler struct {
	siteURL string
	tracks  *services.TrackService
}

func NewSEOHandler(siteURL string, tracks *services.TrackService) *SEOHandler {
	return &SEOHandler{siteURL: siteURL, tracks: tracks}
}

// RobotsTxt handles GET /robots.txt
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /
Disallow: /api/
Disallow: /auth/
Disallow: /profile
Disallow: /sign-in

Sitemap: %s/sitemap.xml
`, h.siteURL)
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML handles GET /sitemap.xml: the home page plus every reviewed track.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	entries, err := h.tracks.Reviewed(c.Request.Context(), sitemapLimit)
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, sitemapURL{
		Loc:        h.siteURL + "/",
		LastMod:    time.Now().UTC().Format("2006-01-02"),
		ChangeFreq: "daily",
		Priority:   "1.0",
	})
	for _, e := range entries {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + "/track/" + e.TrackID,
			LastMod:    e.LastMod.UTC().Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}

const sitemapLimit = 5000
