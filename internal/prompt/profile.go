package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes the clinic the generated posts are written for.
type Profile struct {
	ClinicName string `yaml:"clinic_name"`
	// Specialty is the full scope of the clinic; TopicFocus narrows it for
	// topic suggestions.
	Specialty     string       `yaml:"specialty"`
	TopicFocus    string       `yaml:"topic_focus"`
	Country       string       `yaml:"country"`
	Community     string       `yaml:"community"`
	Audience      string       `yaml:"audience"`
	Persona       string       `yaml:"persona"`
	Dialect       string       `yaml:"dialect"`
	People        string       `yaml:"people"`
	Strategies    []Strategy   `yaml:"strategies"`
	Examples      []string     `yaml:"examples"`
	AudienceHints []string     `yaml:"audience_hints"`
	SceneIdeas    []string     `yaml:"scene_ideas"`
	ArtStyles     []ArtStyle   `yaml:"art_styles"`
	Colors        []BrandColor `yaml:"brand_colors"`
}

type Strategy struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type ArtStyle struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type BrandColor struct {
	Name string `yaml:"name"`
	Hex  string `yaml:"hex"`
}

// DefaultProfile is the neurology clinic the tool was built for.
func DefaultProfile() Profile {
	return Profile{
		ClinicName: "Dr. Hayam Neuro Clinic",
		Specialty:  "أمراض الباطنة والمخ والأعصاب",
		TopicFocus: "أمراض المخ والأعصاب",
		Country:    "مصر",
		Community:  "للمجتمع المصري",
		Audience:   "المصريون",
		Persona:    "طبيب مصري خبير",
		Dialect:    "مصرية",
		People:     "ملامح مصرية أو عربية (Egyptian or Arab features)",
		Strategies: []Strategy{
			{Name: "نصيحة في دقيقة", Description: "نصائح عملية وسريعة."},
			{Name: "حقيقة أم خرافة؟", Description: "تصحيح المفاهيم الطبية الشائعة."},
			{Name: "جسمك بيقولك إيه؟", Description: "تفسير مبسط لأعراض شائعة ومقلقة."},
			{Name: "صحة المخ في...", Description: "ربط العادات اليومية بصحة الدماغ."},
		},
		Examples: []string{
			"لماذا تشعر بـ 'كهرباء' أو تنميل في أطرافك؟",
			"خرافة: طقطقة الرقبة تسبب سكتة دماغية.",
			"3 أكلات بسيطة لتقوية ذاكرتك اليومية.",
			"الدوخة المفاجئة عند الوقوف: هل هي خطيرة؟",
		},
		AudienceHints: []string{
			"لو الموضوع عن الزهايمر، ركز على كبار السن.",
			"لو عن ضغط العمل، ركز على الشباب في منتصف العمر.",
			"لو عن صحة الأمومة، ركز على النساء.",
		},
		SceneIdeas: []string{
			"لضعف التركيز، صورة شخص ملامحه تتلاشى وتتداخل مع صفحات كتاب.",
			"للأرق، غرفة نوم بسقف على شكل سماء ليلية مضطربة.",
		},
		ArtStyles: []ArtStyle{
			{Name: "Photorealistic, emotional", Description: "واقعي، يركز على المشاعر الإنسانية العميقة"},
			{Name: "Cinematic, dramatic lighting", Description: "سينمائي، إضاءة درامية قوية"},
			{Name: "3D render, clean, medical illustration", Description: "تصميم ثلاثي الأبعاد نقي كأنه توضيح طبي حديث"},
			{Name: "Symbolic vector art", Description: "فن متجهي رمزي يعبر عن الفكرة بأقل العناصر"},
			{Name: "Abstract conceptual art", Description: "فن تجريدي مفاهيمي يمثل العمليات العصبية أو المشاعر"},
			{Name: "Double exposure photography", Description: "تعريض مزدوج يدمج صورة شخص مع رمز للمشكلة"},
			{Name: "Surreal, dream-like art", Description: "فن سريالي حالم يصور الحالة النفسية بطريقة مدهشة"},
			{Name: "Hopeful and light, painterly style", Description: "أسلوب رسم زيتي مفعم بالأمل والنور"},
		},
		Colors: []BrandColor{
			{Name: "Mint Green", Hex: "#7AC943"},
			{Name: "Soft Medical Purple", Hex: "#A066A6"},
		},
	}
}

// LoadProfile reads a YAML profile from path. Fields missing from the file
// keep their DefaultProfile values.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	var override Profile
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}

	p.merge(override)
	return p, nil
}

func (p *Profile) merge(o Profile) {
	if o.ClinicName != "" {
		p.ClinicName = o.ClinicName
	}
	if o.Specialty != "" {
		p.Specialty = o.Specialty
	}
	if o.TopicFocus != "" {
		p.TopicFocus = o.TopicFocus
	}
	if o.Community != "" {
		p.Community = o.Community
	}
	if o.Persona != "" {
		p.Persona = o.Persona
	}
	if o.Audience != "" {
		p.Audience = o.Audience
	}
	if o.Country != "" {
		p.Country = o.Country
	}
	if o.Dialect != "" {
		p.Dialect = o.Dialect
	}
	if o.People != "" {
		p.People = o.People
	}
	if len(o.Strategies) > 0 {
		p.Strategies = o.Strategies
	}
	if len(o.Examples) > 0 {
		p.Examples = o.Examples
	}
	if len(o.AudienceHints) > 0 {
		p.AudienceHints = o.AudienceHints
	}
	if len(o.SceneIdeas) > 0 {
		p.SceneIdeas = o.SceneIdeas
	}
	if len(o.ArtStyles) > 0 {
		p.ArtStyles = o.ArtStyles
	}
	if len(o.Colors) > 0 {
		p.Colors = o.Colors
	}
}
