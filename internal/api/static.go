package api

import (
	"encoding/xml"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapHandler renders an XML sitemap covering the landing page and
// every short link.
func (h *Handlers) SitemapHandler(c *gin.Context) {
	links, err := h.Links.ListAllLinks()
	if err != nil {
		log.Printf("Error listing links for sitemap: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	base := strings.TrimRight(h.BaseURL, "/")
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(links)+1),
	}
	set.URLs = append(set.URLs, sitemapURL{Loc: base + "/"})
	for _, link := range links {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     base + "/" + link.Slug,
			LastMod: link.CreatedAt.Format(time.DateOnly),
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.Data(http.StatusOK, "application/xml", append([]byte(xml.Header), out...))
}

// RobotsHandler serves a robots.txt that keeps crawlers off the API.
func RobotsHandler(c *gin.Context) {
	c.String(http.StatusOK, "User-agent: *\nDisallow: /api/\nAllow: /\n")
}
