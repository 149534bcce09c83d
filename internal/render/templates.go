package render

// chromeTemplate wraps a section with editor-only controls. It never
// appears in read-only rendering.
const chromeTemplate = `<div class="ap-section{{if .Selected}} ap-selected{{end}}" data-section-id="{{.ID}}" data-section-type="{{.Type}}" draggable="true">
<span class="ap-drag-handle" title="Drag to reorder">&#x2807;</span>
{{if not .Required}}<button class="ap-delete" data-action="delete" data-section-id="{{.ID}}" title="Delete section">&times;</button>{{end}}
{{if .Selected}}<span class="ap-type-badge">{{.Type}}</span>{{end}}
{{.Inner}}
</div>`

// builtinTemplates holds the HTML body for every known section type.
// Templates must tolerate missing content fields; default content only
// guarantees structure for the required types.
var builtinTemplates = map[string]string{
	"hero": `<section class="ap-hero" style="{{.Style}}">
{{with .Content.image}}<img class="ap-hero-image" src="{{.}}" alt="{{with $.Content.title}}{{.}}{{end}}">{{end}}
<div class="ap-hero-overlay">
<h1>{{with .Content.title}}{{.}}{{else}}Beautiful Property{{end}}</h1>
{{with .Content.subtitle}}<p class="ap-hero-subtitle">{{.}}</p>{{end}}
{{with .Content.price}}<span class="ap-hero-price">{{.}}</span>{{end}}
</div>
</section>`,

	"features": `<section class="ap-features" style="{{.Style}}">
<ul>
<li><span class="ap-feature-label">Bedrooms</span><span class="ap-feature-value">{{with .Content.bedrooms}}{{.}}{{end}}</span></li>
<li><span class="ap-feature-label">Bathrooms</span><span class="ap-feature-value">{{with .Content.bathrooms}}{{.}}{{end}}</span></li>
<li><span class="ap-feature-label">Square Footage</span><span class="ap-feature-value">{{with .Content.squareFootage}}{{.}} sq ft{{end}}</span></li>
</ul>
</section>`,

	"gallery": `<section class="ap-gallery" style="{{.Style}}">
<div class="ap-gallery-grid">
{{range .Content.images}}<figure><img src="{{.}}" alt="Property image"></figure>
{{end}}</div>
</section>`,

	"description": `<section class="ap-description" style="{{.Style}}">
<div class="ap-description-text">{{markdown (printf "%v" (or .Content.text .Content.description ""))}}</div>
{{with .Content.features}}<ul class="ap-highlights">
{{range .}}<li>{{.}}</li>
{{end}}</ul>{{end}}
</section>`,

	"contact": `<section class="ap-contact" style="{{.Style}}">
{{with .Content.agent}}<div class="ap-agent">
<h3>{{with .name}}{{.}}{{else}}Contact Agent{{end}}</h3>
{{with .phone}}<p class="ap-agent-phone">{{.}}</p>{{end}}
{{with .email}}<p class="ap-agent-email">{{.}}</p>{{end}}
{{with .hours}}<p class="ap-agent-hours">{{.}}</p>{{end}}
</div>{{end}}
<form class="ap-contact-form" method="post">
<h3>Schedule a Viewing</h3>
<input type="text" name="name" placeholder="Name" required>
<input type="email" name="email" placeholder="Email" required>
<input type="tel" name="phone" placeholder="Phone">
<textarea name="message" placeholder="Message" required></textarea>
<button type="submit">Send</button>
</form>
</section>`,

	"amenities": `<section class="ap-amenities" style="{{.Style}}">
<h2>{{with .Content.title}}{{.}}{{else}}Amenities{{end}}</h2>
<ul>
{{range .Content.items}}<li>{{.}}</li>
{{end}}</ul>
</section>`,

	"location": `<section class="ap-location" style="{{.Style}}">
<h2>{{with .Content.title}}{{.}}{{else}}Location{{end}}</h2>
{{with .Content.address}}<address>{{.}}</address>{{end}}
{{with .Content.mapImage}}<img class="ap-map" src="{{.}}" alt="Map">{{end}}
</section>`,

	"neighborhood": `<section class="ap-neighborhood" style="{{.Style}}">
<h2>{{with .Content.title}}{{.}}{{else}}Neighborhood{{end}}</h2>
{{with .Content.text}}<div>{{markdown (printf "%v" .)}}</div>{{end}}
</section>`,

	"floorplan": `<section class="ap-floorplan" style="{{.Style}}">
<h2>{{with .Content.title}}{{.}}{{else}}Floor Plan{{end}}</h2>
{{with .Content.image}}<img src="{{.}}" alt="Floor plan">{{end}}
</section>`,

	"testimonials": `<section class="ap-testimonials" style="{{.Style}}">
<h2>{{with .Content.title}}{{.}}{{else}}What People Say{{end}}</h2>
{{range .Content.items}}<blockquote>
{{with .quote}}<p>{{.}}</p>{{end}}
{{with .author}}<cite>{{.}}</cite>{{end}}
</blockquote>
{{end}}</section>`,

	"similar": `<section class="ap-similar" style="{{.Style}}">
<h2>{{with .Content.title}}{{.}}{{else}}Similar Properties{{end}}</h2>
<div class="ap-similar-grid">
{{range .Content.items}}<article class="ap-card">
{{with .image}}<img src="{{.}}" alt="Similar property">{{end}}
{{with .title}}<h3>{{.}}</h3>{{end}}
{{with .price}}<span>{{.}}</span>{{end}}
</article>
{{end}}</div>
</section>`,

	// Decorative types emitted by the AI generator. They share a generic
	// body: optional title plus free-form text elements.
	"showcase":   decorativeTemplate,
	"stats":      decorativeTemplate,
	"timeline":   decorativeTemplate,
	"panorama":   decorativeTemplate,
	"highlights": decorativeTemplate,
	"video":      decorativeTemplate,
	"comparison": decorativeTemplate,
	"calculator": decorativeTemplate,
}

const decorativeTemplate = `<section class="ap-{{.Type}}" style="{{.Style}}">
{{with .Content.title}}<h2>{{.}}</h2>{{end}}
{{with .Content.text}}<p>{{.}}</p>{{end}}
{{range .Content.elements}}{{with .text}}<p>{{.}}</p>{{end}}
{{end}}</section>`
