package gateway

// Schema is a backend-neutral description of the JSON shape a text model
// must produce. Backends translate it to their native form.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

const (
	TypeObject = "object"
	TypeArray  = "array"
	TypeString = "string"
)

var TopicsSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"topics": {
			Type:        TypeArray,
			Items:       &Schema{Type: TypeString},
			Description: "A list of 4 engaging social media post topics.",
		},
	},
	Required: []string{"topics"},
}

var ContentSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"post": {
			Type: TypeObject,
			Properties: map[string]*Schema{
				"title": {
					Type:        TypeString,
					Description: "عنوان جذاب باللغة العربية لا يزيد عن 8 كلمات.",
				},
				"caption": {
					Type:        TypeString,
					Description: "نص البوست الكامل المكون من 4 فقرات باللغة العربية.",
				},
				"hashtags": {
					Type:        TypeArray,
					Items:       &Schema{Type: TypeString},
					Description: "ثلاثة هاشتاجات مناسبة باللغة العربية.",
				},
			},
			Required: []string{"title", "caption", "hashtags"},
		},
		"image": {
			Type: TypeObject,
			Properties: map[string]*Schema{
				"image_prompt": {
					Type:        TypeString,
					Description: "وصف تفصيلي باللغة الإنجليزية لإنشاء صورة.",
				},
			},
			Required: []string{"image_prompt"},
		},
	},
	Required: []string{"post", "image"},
}
