package aware

// Category selects the analysis profile the backend applies to a product
// image.
type Category string

const (
	CategoryGeneral      Category = "General"
	CategoryFood         Category = "Food"
	CategoryCosmetics    Category = "Cosmetics"
	CategoryPetFood      Category = "Pet Food"
	CategoryPetCosmetics Category = "Pet Cosmetics"
)

// Categories lists the categories the backend understands, in display order.
var Categories = []Category{
	CategoryGeneral,
	CategoryFood,
	CategoryCosmetics,
	CategoryPetFood,
	CategoryPetCosmetics,
}

// ScanRequest describes one single-image analysis job. Immutable once
// constructed.
type ScanRequest struct {
	URL      string   `json:"url"`
	Category Category `json:"category"`
	Allergy  string   `json:"allergy"`
}

// Ingredient is one recognized ingredient with its health assessment.
type Ingredient struct {
	Name        string `json:"name"`
	Itype       string `json:"Itype"`
	Description string `json:"description"`
	HealthScore int    `json:"health_score"`
}

// NutritionEstimate is the backend's per-serving nutrition guess.
type NutritionEstimate struct {
	Calory  float64 `json:"calory"`
	Energy  float64 `json:"energy"`
	Protein float64 `json:"protein"`
	Sugar   float64 `json:"sugar,omitempty"`
	Fat     float64 `json:"fat,omitempty"`
	Fiber   float64 `json:"fiber,omitempty"`
	Sodium  float64 `json:"sodium,omitempty"`
}

// ScanResult is the analysis of one product image.
type ScanResult struct {
	IsSafe            bool              `json:"is_safe"`
	ProductName       string            `json:"product_name"`
	URL               string            `json:"url"`
	Description       string            `json:"description"`
	Ingredients       []Ingredient      `json:"ingredients"`
	NutritionEstimate NutritionEstimate `json:"nutrition_estimate"`
	HealthScore       int               `json:"health_score"`
}

// CompareRequest describes one dual-image comparison job. Immutable once
// constructed.
type CompareRequest struct {
	URL1     string   `json:"url1"`
	URL2     string   `json:"url2"`
	Category Category `json:"category"`
	Allergy  string   `json:"allergy"`
	Usecase  string   `json:"usecase"`
}

// CompareResult weighs two products against each other.
type CompareResult struct {
	Status          bool   `json:"status,omitempty"`
	BestProduct     string `json:"best_product"`
	IsSafe1         bool   `json:"is_safe1"`
	IsSafe2         bool   `json:"is_safe2"`
	HealthScore1    int    `json:"health_score1"`
	HealthScore2    int    `json:"health_score2"`
	Description1    string `json:"description1"`
	Description2    string `json:"description2"`
	PreferredForYou string `json:"preferred_for_you"`
	URL1            string `json:"url1"`
	URL2            string `json:"url2"`
}

// HistoryItem is one past scan as the backend records it.
type HistoryItem struct {
	ID          int     `json:"id"`
	CreatedAt   string  `json:"created_at"`
	User        string  `json:"user"`
	Name        string  `json:"name"`
	HealthScore int     `json:"health_score"`
	Calory      float64 `json:"calory"`
	Energy      float64 `json:"energy"`
	Protein     float64 `json:"protein"`
	Sugar       float64 `json:"sugar"`
	Fat         float64 `json:"fat"`
	Fiber       float64 `json:"fiber"`
	ImageURL    string  `json:"image_url"`
}
