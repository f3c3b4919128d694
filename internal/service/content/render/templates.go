package render

import "html/template"

// Titles and labels are escaped by html/template; Content is already
// sanitized and passed as template.HTML.
var blockTemplate = template.Must(template.New("block").Parse(
	`<div class="lesson-block">` +
		`{{if .Title}}{{if .Sub}}<h3 class="lesson-block__title">{{.Title}}</h3>{{else}}<h2 class="lesson-block__title">{{.Title}}</h2>{{end}}{{end}}` +
		`<div class="lesson-block__content">{{.Content}}</div>` +
		`{{if .Images}}<div class="media-gallery media-gallery--images">` +
		`{{range .Images}}<figure class="media-gallery__item"><img src="{{.URL}}" alt="{{.Label}}" loading="lazy">{{if .Label}}<figcaption>{{.Label}}</figcaption>{{end}}</figure>{{end}}` +
		`</div>{{end}}` +
		`{{if .Videos}}<div class="media-gallery media-gallery--videos">` +
		`{{range .Videos}}<div class="media-gallery__item">` +
		`{{if .EmbedURL}}<iframe src="{{.EmbedURL}}" title="{{.Label}}" allow="encrypted-media; picture-in-picture" allowfullscreen loading="lazy" referrerpolicy="strict-origin-when-cross-origin"></iframe>` +
		`{{else}}<a href="{{.LinkURL}}" target="_blank" rel="noopener noreferrer">{{if .Label}}{{.Label}}{{else}}{{.LinkURL}}{{end}}</a>{{end}}` +
		`{{if and .EmbedURL .Label}}<p class="media-gallery__caption">{{.Label}}</p>{{end}}` +
		`</div>{{end}}` +
		`</div>{{end}}` +
		`{{if .Documents}}<ul class="media-gallery media-gallery--documents">` +
		`{{range .Documents}}<li class="media-gallery__item"><a href="{{.URL}}" download>{{if .Label}}{{.Label}}{{else}}{{.URL}}{{end}}</a></li>{{end}}` +
		`</ul>{{end}}` +
		`</div>`,
))

var sectionTemplate = template.Must(template.New("section").Parse(
	`<section class="lesson-section" id="section-{{.ID}}">{{.Block}}{{range .Subsections}}{{.}}{{end}}</section>`,
))

var documentTemplate = template.Must(template.New("document").Parse(
	`<article class="lesson-content">{{range .}}{{.}}{{end}}</article>`,
))
