package catalog

import "cdp/scansvc/internal/model"

// diseaseEntries 病害方案静态表（进程启动时构建一次，只读）
func diseaseEntries() map[string]model.Solution {
	return map[string]model.Solution{
		"Tomato___Early_blight": {
			Crop:     "Tomato",
			Disease:  "Early Blight",
			Severity: model.SeverityMedium,
			Organic: []string{
				"Neem oil spray (3 ml/L water)",
				"Remove and destroy infected leaves immediately",
				"Spray with Trichoderma viride (5-10 g/L)",
				"Apply Bordeaux mixture (1%)",
			},
			Chemical: []string{
				"Mancozeb 75% WP (2 g/L water)",
				"Chlorothalonil 75% WP (2 g/L)",
				"Azoxystrobin 23% SC (1 ml/L)",
			},
			Prevention: []string{
				"Avoid overhead irrigation",
				"Ensure proper plant spacing for air circulation",
				"Crop rotation with non-solanaceous crops",
				"Mulching to prevent soil splash",
			},
		},
		"Tomato___Late_blight": {
			Crop:     "Tomato",
			Disease:  "Late Blight",
			Severity: model.SeverityHigh,
			Organic: []string{
				"Copper oxychloride spray (3 g/L)",
				"Bordeaux mixture (1%) spray",
				"Remove infected plants immediately",
			},
			Chemical: []string{
				"Mancozeb 75% WP (2.5 g/L)",
				"Cymoxanil + Mancozeb (2 g/L)",
				"Metalaxyl 8% + Mancozeb 64% WP (2.5 g/L)",
			},
			Prevention: []string{
				"Plant resistant varieties",
				"Avoid wet foliage - irrigate in morning",
				"Ensure proper drainage",
				"Destroy volunteer plants and crop residue",
			},
		},
		"Tomato___Bacterial_spot": {
			Crop:     "Tomato",
			Disease:  "Bacterial Spot",
			Severity: model.SeverityMedium,
			Organic: []string{
				"Copper-based bactericides (2-3 g/L)",
				"Remove infected plant parts",
				"Neem oil spray",
			},
			Chemical: []string{
				"Streptocycline 90% + Copper oxychloride 50% (0.3 g/L)",
				"Copper hydroxide (2 g/L)",
			},
			Prevention: []string{
				"Use certified disease-free seeds",
				"Avoid overhead irrigation",
				"Crop rotation for 2-3 years",
			},
		},
		"Potato___Early_blight": {
			Crop:     "Potato",
			Disease:  "Early Blight",
			Severity: model.SeverityMedium,
			Organic: []string{
				"Neem oil spray (3 ml/L)",
				"Copper-based fungicides",
				"Remove infected foliage",
			},
			Chemical: []string{
				"Mancozeb 75% WP (2.5 g/L)",
				"Chlorothalonil 75% WP (2 g/L)",
				"Azoxystrobin 23% SC (1 ml/L)",
			},
			Prevention: []string{
				"Use certified disease-free seed potatoes",
				"Crop rotation (3-4 years)",
				"Hill up soil around plants",
			},
		},
		"Potato___Late_blight": {
			Crop:     "Potato",
			Disease:  "Late Blight",
			Severity: model.SeverityCritical,
			Organic: []string{
				"Copper oxychloride (3 g/L) - preventive",
				"Destroy infected plants immediately",
			},
			Chemical: []string{
				"Mancozeb 75% WP (2.5 g/L)",
				"Metalaxyl + Mancozeb (2.5 g/L)",
				"Cymoxanil + Mancozeb (2 g/L)",
			},
			Prevention: []string{
				"Plant certified disease-free tubers",
				"Early planting to avoid monsoon",
				"Monitor weather for disease-favorable conditions",
			},
		},
		"Apple___Black_rot": {
			Crop:     "Apple",
			Disease:  "Black Rot",
			Severity: model.SeverityHigh,
			Organic: []string{
				"Prune out infected branches",
				"Remove mummified fruits",
				"Copper-based fungicides",
			},
			Chemical: []string{
				"Mancozeb 75% WP (2.5 g/L)",
				"Captan 50% WP (2 g/L)",
				"Thiophanate-methyl 70% WP (1 g/L)",
			},
			Prevention: []string{
				"Remove all mummies and cankers",
				"Prune dead wood",
				"Maintain tree vigor with proper nutrition",
			},
		},
		"Pepper,_bell___Bacterial_spot": {
			Crop:     "Bell Pepper",
			Disease:  "Bacterial Spot",
			Severity: model.SeverityMedium,
			Organic: []string{
				"Copper-based bactericides (2 g/L)",
				"Remove and destroy infected plants",
				"Neem oil spray",
			},
			Chemical: []string{
				"Streptocycline + Copper oxychloride (0.3 g/L)",
				"Copper hydroxide (2 g/L)",
			},
			Prevention: []string{
				"Use certified pathogen-free seeds",
				"Avoid working with wet plants",
				"2-3 year crop rotation",
			},
		},
		"Grape___Black_rot": {
			Crop:     "Grape",
			Disease:  "Black Rot",
			Severity: model.SeverityHigh,
			Organic: []string{
				"Remove infected berries and leaves",
				"Copper-based fungicides",
				"Bordeaux mixture spray",
			},
			Chemical: []string{
				"Mancozeb 75% WP (2.5 g/L)",
				"Captan 50% WP (2 g/L)",
				"Azoxystrobin 23% SC (1 ml/L)",
			},
			Prevention: []string{
				"Remove mummified berries",
				"Prune for air circulation",
				"Apply fungicides from bud break to harvest",
			},
		},
	}
}

// healthyEntries 健康养护静态表
func healthyEntries() map[string]model.Solution {
	return map[string]model.Solution{
		"Tomato___healthy": {
			Crop:     "Tomato",
			Disease:  "Healthy",
			Severity: model.SeverityNone,
			Message:  "Your tomato plant appears healthy! Keep up the good practices.",
			Maintenance: []string{
				"Continue regular watering (avoid wetting leaves)",
				"Maintain balanced fertilization",
				"Monitor for early signs of pests or diseases",
				"Prune suckers for better air circulation",
			},
		},
		"Potato___healthy": {
			Crop:     "Potato",
			Disease:  "Healthy",
			Severity: model.SeverityNone,
			Message:  "Your potato plant is healthy!",
			Maintenance: []string{
				"Continue proper hilling",
				"Maintain consistent soil moisture",
				"Monitor for Colorado potato beetles",
				"Apply balanced NPK fertilizer",
			},
		},
		"Apple___healthy": {
			Crop:     "Apple",
			Disease:  "Healthy",
			Severity: model.SeverityNone,
			Message:  "Your apple tree appears healthy!",
			Maintenance: []string{
				"Continue annual pruning",
				"Monitor for pest activity",
				"Apply dormant oil spray in spring",
				"Remove fallen fruit and leaves",
			},
		},
		"Pepper,_bell___healthy": {
			Crop:     "Bell Pepper",
			Disease:  "Healthy",
			Severity: model.SeverityNone,
			Message:  "Your bell pepper plant is healthy!",
			Maintenance: []string{
				"Continue consistent watering",
				"Apply balanced fertilizer",
				"Monitor for aphids and other pests",
				"Mulch to maintain soil moisture",
			},
		},
	}
}

// unknownContacts 未收录病害时推荐的人工咨询渠道
func unknownContacts() []string {
	return []string{
		"Local agricultural extension officer",
		"Plant pathologist",
		"Regional crop advisory helpline",
	}
}
