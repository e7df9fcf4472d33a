package diagnoses

import (
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
)

// Condition is a catalog entry the classifier can return.
type Condition struct {
	ID          enums.PlantCondition
	Name        i18n.Text
	Confidence  float64
	Description i18n.Text
	Treatment   i18n.TextList
	Prevention  i18n.TextList
}

var catalog = []Condition{
	{
		ID:          enums.PlantConditionHealthy,
		Name:        i18n.NewText("Healthy", "صحي"),
		Confidence:  0.95,
		Description: i18n.NewText("The plant appears to be healthy with no visible signs of disease or pest infestation.", "النبات يبدو صحيًا بدون علامات مرئية للمرض أو إصابة الآفات."),
		Treatment: i18n.TextList{
			EN: []string{"No treatment needed. Continue with regular care."},
			AR: []string{"لا يحتاج إلى علاج. استمر في الرعاية المنتظمة."},
		},
		Prevention: i18n.TextList{
			EN: []string{"Maintain regular watering.", "Provide appropriate light.", "Fertilize occasionally."},
			AR: []string{"حافظ على الري المنتظم.", "وفر الضوء المناسب.", "سمّد النبات من حين لآخر."},
		},
	},
	{
		ID:          enums.PlantConditionLeafSpot,
		Name:        i18n.NewText("Leaf Spot Disease", "مرض تبقع الأوراق"),
		Confidence:  0.85,
		Description: i18n.NewText("Leaf spot is a common plant disease characterized by brown or black spots on leaves.", "تبقع الأوراق هو مرض نباتي شائع يتميز ببقع بنية أو سوداء على الأوراق."),
		Treatment: i18n.TextList{
			EN: []string{"Remove affected leaves.", "Apply fungicide if severe.", "Ensure good air circulation."},
			AR: []string{"قم بإزالة الأوراق المصابة.", "ضع مبيدًا فطريًا إذا كانت الإصابة شديدة.", "تأكد من وجود دورة هوائية جيدة."},
		},
		Prevention: i18n.TextList{
			EN: []string{"Avoid overhead watering.", "Space plants properly.", "Keep the garden clean of debris."},
			AR: []string{"تجنب الري العلوي.", "باعد بين النباتات بشكل مناسب.", "حافظ على نظافة الحديقة من البقايا."},
		},
	},
	{
		ID:          enums.PlantConditionPowderyMildew,
		Name:        i18n.NewText("Powdery Mildew", "البياض الدقيقي"),
		Confidence:  0.78,
		Description: i18n.NewText("Powdery mildew appears as white powdery spots on leaves and stems.", "يظهر البياض الدقيقي كبقع بيضاء مسحوقية على الأوراق والسيقان."),
		Treatment: i18n.TextList{
			EN: []string{"Apply fungicide or a mixture of baking soda, water and soap.", "Remove severely affected parts."},
			AR: []string{"ضع مبيدًا فطريًا أو خليطًا من صودا الخبز والماء والصابون.", "قم بإزالة الأجزاء المتضررة بشدة."},
		},
		Prevention: i18n.TextList{
			EN: []string{"Improve air circulation.", "Avoid overhead watering.", "Plant resistant varieties."},
			AR: []string{"حسّن دورة الهواء.", "تجنب الري العلوي.", "ازرع أصنافًا مقاومة."},
		},
	},
	{
		ID:          enums.PlantConditionRootRot,
		Name:        i18n.NewText("Root Rot", "تعفن الجذور"),
		Confidence:  0.72,
		Description: i18n.NewText("Root rot is caused by waterlogged soil and shows as wilting, yellow leaves and dark mushy roots.", "ينتج تعفن الجذور عن التربة المشبعة بالماء ويظهر كذبول واصفرار الأوراق وجذور داكنة طرية."),
		Treatment: i18n.TextList{
			EN: []string{"Remove the plant from its pot and trim rotten roots.", "Repot in fresh, well-draining soil.", "Water only when the topsoil is dry."},
			AR: []string{"أخرج النبات من الأصيص وقص الجذور المتعفنة.", "أعد زراعته في تربة جديدة جيدة التصريف.", "اسقه فقط عندما تجف الطبقة العليا من التربة."},
		},
		Prevention: i18n.TextList{
			EN: []string{"Use pots with drainage holes.", "Avoid overwatering."},
			AR: []string{"استخدم أصصًا ذات فتحات تصريف.", "تجنب الإفراط في الري."},
		},
	},
	{
		ID:          enums.PlantConditionAphidInfestation,
		Name:        i18n.NewText("Aphid Infestation", "إصابة بحشرة المن"),
		Confidence:  0.81,
		Description: i18n.NewText("Aphids are small sap-sucking insects that cluster on new growth and cause curled leaves.", "المن حشرات صغيرة تمتص العصارة وتتجمع على النموات الجديدة وتسبب تجعد الأوراق."),
		Treatment: i18n.TextList{
			EN: []string{"Spray the plant with a strong stream of water.", "Apply insecticidal soap or neem oil."},
			AR: []string{"رش النبات بتيار قوي من الماء.", "استخدم صابونًا مبيدًا للحشرات أو زيت النيم."},
		},
		Prevention: i18n.TextList{
			EN: []string{"Inspect new growth regularly.", "Encourage natural predators such as ladybirds."},
			AR: []string{"افحص النموات الجديدة بانتظام.", "شجع الأعداء الطبيعيين مثل الدعسوقة."},
		},
	},
}

// Catalog returns a copy of every known condition.
func Catalog() []Condition {
	out := make([]Condition, len(catalog))
	copy(out, catalog)
	return out
}

// LookupCondition finds a catalog entry by identifier.
func LookupCondition(id enums.PlantCondition) (Condition, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Condition{}, false
}
