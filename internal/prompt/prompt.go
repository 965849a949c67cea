package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

const topicsTemplate = `
أنت خبير استراتيجي في مجال التواصل الاجتماعي لعيادة "{{.ClinicName}}" في {{.Country}}، وهي عيادة متخصصة في {{.TopicFocus}}.

مهمتك هي اقتراح {{.Count}} أفكار لمواضيع منشورات تكون جذابة ومناسبة جداً {{.Community}}.

ركز على استراتيجيات المحتوى التي تزيد من التفاعل والانتشار (Reach)، مثل:
{{- range .Strategies}}
- **"{{.Name}}":** {{.Description}}
{{- end}}

يجب أن تكون المواضيع المقترحة قصيرة، ومثيرة للفضول، ومكتوبة باللغة العربية.
{{if .Examples}}
مثال على المواضيع الجيدة:
{{- range .Examples}}
- "{{.}}"
{{- end}}
{{end}}
النتيجة النهائية يجب أن تكون بصيغة JSON فقط، وهي عبارة عن كائن يحتوي على مصفوفة باسم "topics" بداخلها {{.Count}} مواضيع نصية.
`

const contentTemplate = `
أنت نظام ذكاء اصطناعي متخصص في إنشاء محتوى يومي لمنصات التواصل الاجتماعي لـ "{{.ClinicName}}"، عيادة متخصصة في {{.Specialty}} في {{.Country}}.

مهمتك هي إنشاء محتوى متكامل (نص وصورة) بناءً على موضوع اليوم.
موضوع اليوم هو: "{{.Topic}}"

**أولاً: إعداد النص (شخصية {{.Persona}})**
- اكتب بوستًا من 4 فقرات بلغة عربية بسيطة ودافئة بلهجة {{.Dialect}}، وافصل بين الفقرات بسطر فارغ.
1.  **فقرة أولى (Hook):** ابدأ بجملة قوية تمس مشكلة يعاني منها {{.Audience}} تتعلق بالموضوع.
2.  **فقرتان وسطيتان:** اشرح الأسباب أو العادات الخاطئة ببساطة، بدون مصطلحات طبية معقدة.
3.  **فقرة أخيرة:** قدم نصيحة عملية ودعوة للتفاعل.
- أضف 3 هاشتاجات مناسبة في النهاية.

**ثانيًا: إعداد وصف الصورة (شخصية مصمم طبي محترف، فنان ومبدع)**
- اكتب وصفًا تفصيليًا باللغة الإنجليزية لمولد الصور (Imagen).
- كن مبدعًا للغاية وفكر خارج الصندوق. تجنب التفسيرات الحرفية والمباشرة للحالة الطبية قدر الإمكان، وركز على الجانب الإنساني، الشعوري، أو الرمزي للموضوع.

- **تحديد الشخصيات:** بناءً على موضوع البوست "{{.Topic}}"، حدد بذكاء الفئة الأكثر تأثرًا به (شباب، كبار سن، رجال، نساء، أطفال). يجب أن تعكس الشخصيات في الصورة هذه الفئة العمرية والجنس بوضوح.
{{- if .AudienceHints}}
    - **مثال:** {{join .AudienceHints " "}}
{{- end}}
    - **مهم:** إذا كانت الصورة تتضمن سيدة، يجب أن تكون محجبة دائمًا (If the image features a woman, she must be wearing a hijab).
{{if .ArtStyles}}
- **النمط الفني (Art Style):** اختر بذكاء وبشكل عشوائي في كل مرة نمطًا فنيًا مختلفًا من القائمة الموسعة التالية لضمان التنوع البصري. صف النمط بوضوح في البرومبت الإنجليزي:
{{- range .ArtStyles}}
    - **{{.Name}}:** ({{.Description}})
{{- end}}
{{end}}
- **الإبداع في المشهد:** لا تكتفِ بتصوير الشخص المريض. ابتكر مشاهد رمزية قوية.{{if .SceneIdeas}} (مثلاً: {{join .SceneIdeas " "}}){{end}}

- **المواصفات الإلزامية:**
  - **الأشخاص:** {{.People}}.
  - **الإضاءة:** ناعمة وسينمائية (Soft, cinematic lighting).
  - **الخلفية:** طبية بسيطة، منزلية دافئة، أو رمزية حسب النمط.
{{- if .Colors}}
  - **الألوان:** يجب أن تتضمن ألوان البراند بلمسات ذكية: {{.ColorList}}.
{{- end}}
  - **الدقة:** High Resolution.
  - **تكوين الصورة:** يجب أن تحتوي على مساحة فارغة (Negative Space).
  - **ممنوعات:** لا شعارات، نصوص، أو علامات تجارية (No logos, text, or brands).

**النتيجة النهائية يجب أن تكون بصيغة JSON فقط، مطابقة تمامًا للهيكل المحدد.**
`

// TopicCount is the number of suggestions requested per batch.
const TopicCount = 4

var (
	topicsTmpl  = template.Must(template.New("topics").Parse(topicsTemplate))
	contentTmpl = template.Must(template.New("content").Funcs(template.FuncMap{"join": strings.Join}).Parse(contentTemplate))
)

// Builder renders the fixed prompt templates for a clinic profile.
type Builder struct {
	profile Profile
}

func NewBuilder(profile Profile) *Builder {
	return &Builder{profile: profile}
}

// Topics renders the topic suggestion prompt.
func (b *Builder) Topics() (string, error) {
	return render(topicsTmpl, struct {
		Profile
		Count int
	}{Profile: b.profile, Count: TopicCount})
}

// Content renders the post and image-prompt generation prompt for topic.
func (b *Builder) Content(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("topic is required")
	}
	return render(contentTmpl, struct {
		Profile
		Topic     string
		ColorList string
	}{Profile: b.profile, Topic: topic, ColorList: colorList(b.profile.Colors)})
}

func colorList(colors []BrandColor) string {
	parts := make([]string, 0, len(colors))
	for _, c := range colors {
		parts = append(parts, fmt.Sprintf("%s (%s)", c.Name, c.Hex))
	}
	return strings.Join(parts, " and ")
}

func render(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", t.Name(), err)
	}
	return sb.String(), nil
}
