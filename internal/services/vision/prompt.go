package vision

// StepPrompt asks the model for the cooking step shown across the frame set.
const StepPrompt = "Analyze these consecutive screenshots from a cooking video and identify the specific cooking step being performed. " +
	"Focus on the primary cooking action or technique being demonstrated. " +
	"Describe the cooking step with precise, action-oriented natural language. " +
	"Consider all screenshots as representing a single continuous cooking step. " +
	"e.g. 'The chef is sauteing diced vegetables in olive oil over medium heat while stirring continuously to ensure even cooking.' " +
	"Provide your description directly without phrases like 'The video shows...' or 'In this clip...'"

// FoodKitchenwarePrompt asks the model for visible ingredients and tools.
const FoodKitchenwarePrompt = "Analyze these consecutive screenshots from a cooking video and provide a description on " +
	"the appearance, relative position and relationship of the following objects: " +
	"1. Ingredients: focusing on their state (raw, chopped, cooked, etc.), appearance, and approximate quantities. " +
	"2. Kitchenware: Identify all tools, utensils, cookware, and appliances, describing how they're currently being used. " +
	"e.g., 'diced onions in a metal bowl next to a chef's knife'. " +
	"Describe the food and kitchenware objects in precise natural language. " +
	"Consider all screenshots as a continuous scene rather than explaining each screenshot separately. " +
	"Start directly with your description without any introductory phrases like 'The video shows...' or 'I can see...'"
