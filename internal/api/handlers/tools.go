package handlers

import (
	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
)

// Tool names exposed on the JSON-RPC endpoint.
const (
	ToolValidate          = "validate"
	ToolRegisterDonor     = "register_blood_donor"
	ToolFindNearbyDonors  = "find_nearby_donors"
	ToolEmergencyRequest  = "emergency_blood_request"
	ToolListFacilities    = "list_hospitals_by_city"
	ToolListDonors        = "list_donors"
	defaultUrgency        = "high"
	bloodTypeArgumentHelp = "Blood type (O+, A+, B+, AB+, O-, A-, B-, AB-)"
)

// Tool describes one callable tool and its argument schema.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Required returns the names of the tool's mandatory arguments.
func (t Tool) Required() []string {
	required, _ := t.InputSchema["required"].([]string)
	if required == nil {
		return []string{}
	}
	return required
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func enumProp(description string, values []string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description, "enum": values}
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// toolCatalogue lists the tools in a stable order. Region enums come from
// the directory.
func toolCatalogue(facilities *services.FacilityService) []Tool {
	regions := facilities.Regions()
	withAll := append(append([]string{}, regions...), services.AllRegions)

	return []Tool{
		{
			Name:        ToolValidate,
			Description: "Validation tool that returns the service phone number",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        ToolRegisterDonor,
			Description: "Register a new blood donor by selecting their nearest hospital",
			InputSchema: objectSchema(map[string]interface{}{
				"name":          stringProp("Donor's full name"),
				"blood_type":    stringProp(bloodTypeArgumentHelp),
				"city":          enumProp("City where donor is located", regions),
				"hospital_name": stringProp("Name of nearest hospital (partial name is okay)"),
				"phone":         stringProp("Contact phone number"),
			}, "name", "blood_type", "city", "hospital_name", "phone"),
		},
		{
			Name:        ToolFindNearbyDonors,
			Description: "Find compatible blood donors near a specific hospital",
			InputSchema: objectSchema(map[string]interface{}{
				"blood_type":    stringProp("Required blood type"),
				"city":          enumProp("City to search in", regions),
				"hospital_name": stringProp("Hospital name for location reference"),
				"radius_km": map[string]interface{}{
					"type":        "number",
					"description": "Search radius in kilometers",
					"default":     10,
				},
			}, "blood_type", "city", "hospital_name"),
		},
		{
			Name:        ToolEmergencyRequest,
			Description: "Create emergency blood donation request at a specific hospital",
			InputSchema: objectSchema(map[string]interface{}{
				"patient_name":  stringProp("Patient name needing blood"),
				"blood_type":    stringProp("Required blood type"),
				"city":          enumProp("City where hospital is located", regions),
				"hospital_name": stringProp("Hospital name where patient is admitted"),
				"urgency": map[string]interface{}{
					"type":        "string",
					"description": "Urgency level",
					"default":     defaultUrgency,
				},
			}, "patient_name", "blood_type", "city", "hospital_name"),
		},
		{
			Name:        ToolListFacilities,
			Description: "List all available hospitals in a specific city or all cities",
			InputSchema: objectSchema(map[string]interface{}{
				"city": enumProp("City name (optional - shows all cities if not specified)", withAll),
			}),
		},
		{
			Name:        ToolListDonors,
			Description: "List all registered blood donors",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
	}
}

func toolNames(tools []Tool) []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return names
}
