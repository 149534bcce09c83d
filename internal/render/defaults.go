package render

import (
	"fmt"

	agentpages "github.com/agentpages/agentpages"
)

// DefaultContent builds the initial content payload for a freshly inserted
// section of the given type, seeded from the property metadata. Unknown
// types get an empty payload; this never fails.
//
// Required types always synthesize enough structure that rendering cannot
// trip over missing fields (gallery gets an empty image list, contact gets
// a placeholder agent).
func DefaultContent(sectionType string, meta agentpages.PropertyMeta) map[string]any {
	switch sectionType {
	case agentpages.TypeHero:
		image := "/placeholder.jpg"
		if len(meta.Images) > 0 {
			image = meta.Images[0]
		}
		return map[string]any{
			"title":    meta.Title,
			"subtitle": fmt.Sprintf("%s Beds • %s Baths • %s sq ft", meta.Bedrooms, meta.Bathrooms, meta.SquareFootage),
			"image":    image,
			"price":    meta.Price,
		}

	case agentpages.TypeFeatures:
		return map[string]any{
			"bedrooms":      meta.Bedrooms,
			"bathrooms":     meta.Bathrooms,
			"squareFootage": meta.SquareFootage,
		}

	case agentpages.TypeGallery:
		images := make([]any, 0, len(meta.Images))
		for _, img := range meta.Images {
			images = append(images, img)
		}
		return map[string]any{
			"images": images,
		}

	case agentpages.TypeDescription:
		features := make([]any, 0, len(meta.Features))
		for _, f := range meta.Features {
			features = append(features, f)
		}
		return map[string]any{
			"text":     meta.Description,
			"features": features,
		}

	case agentpages.TypeContact:
		agent := map[string]any{
			"name":  "Contact Agent",
			"phone": "(555) 123-4567",
			"email": "agent@example.com",
		}
		if meta.Agent != nil {
			agent = map[string]any{
				"name":  meta.Agent.Name,
				"phone": meta.Agent.Phone,
				"email": meta.Agent.Email,
			}
			if meta.Agent.Photo != "" {
				agent["photo"] = meta.Agent.Photo
			}
			if meta.Agent.Hours != "" {
				agent["hours"] = meta.Agent.Hours
			}
		}
		return map[string]any{
			"agent": agent,
		}

	case agentpages.TypeLocation:
		return map[string]any{
			"address": meta.Address,
		}

	default:
		return map[string]any{}
	}
}
