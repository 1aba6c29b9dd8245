package agent

import (
	"fmt"
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// IsImageFile classifies an uploaded file by extension. Images go through
// damage assessment; everything else is treated as a claim document.
func IsImageFile(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ImageInstruction builds the agent instruction for an uploaded damage
// photo: analyze the image, check for an existing claim, create exactly one
// new claim version, then notify the customer.
func ImageInstruction(key string) string {
	return fmt.Sprintf(`
IMAGE ANALYSIS
--------------
Use analyzeImage operation for '%[1]s':
- Claim ID extraction
- Damage details and severity
- Vehicle information
- Damage locations and extent

VALIDATION CHECKS
-----------------
- ALWAYS use getClaimById operation to check for existing claims
  - If exists: review the claim history and uploaded documents; understand the current status
- Include a summary of the findings in document_analysis

CLAIM PROCESSING
----------------
Create claim ONCE with createClaim operation.
CRITICAL: extract the specific fields from the analyzeImage results and populate them in claim_details.
Everything must be in proper JSON format!

{
    "claim_id": "[extract claim_id from image analysis results]",
    "claim_details": {
        "damage_description": "[from image analysis results]",
        "damage_severity": "[minor/moderate/severe]",
        "affected_areas": ["[from image analysis results]"],
        "estimated_cost_from_image": "[from image analysis results]"
    },
    "vehicle_info": {
        "make": "[if visible]",
        "model": "[if visible]",
        "year": "[if visible]"
    },
    "documents": {
        "current_uploaded_documents": ["[list ALL uploaded files including %[1]s]"],
        "required_documents": ["[from KB based on claim type]"]
    },
    "version_summary": {
        "claim_status": "PENDING",
        "document_analysis": "[narrative of visible damage and vehicles, in paragraph form]",
        "document_uploaded": "%[1]s",
        "next_steps": "[customer actions needed, remaining docs]",
        "remaining_requirements": ["[doc1]", "[doc2]"]
    }
}

NOTIFICATION
------------
Use sendNotification operation with the damage assessment and next steps.
Start with "Dear Customer"
End with "Sincerely, AnyCompany Claims Department"`, key)
}

// DocumentInstruction builds the agent instruction for an uploaded claim
// document. today is the current date in YYYY-MM-DD form, used for the
// thirty-day filing-window check.
func DocumentInstruction(fileName, today string) string {
	return fmt.Sprintf(`
DOCUMENT ANALYSIS
-----------------
Analyze '%[1]s' to extract if present in document:
- Claim ID (REQUIRED)
- Policy number, Customer ID
- Vehicle details (make/model/year/VIN)
- Incident date and location
- Total repair cost

VALIDATION CHECKS
-----------------
1. Query knowledge base for policy status and coverage details if a policy number is present in '%[1]s'
2. Calculate days between incident_date and %[2]s (must be within 30 days)
3. ALWAYS use getClaimById operation to check for existing claims
   - If exists: review the claim history and uploaded documents; understand the current status
4. Include a summary of what was found in '%[1]s' in document_analysis

CLAIM PROCESSING
----------------
Create claim ONCE with createClaim operation:
- Only include fields found in the document. Do not include null/empty information!
Everything must be in proper JSON format!

{
    "claim_id": "[extracted from document]",
    "claim_details": {
        "policy_number": "[if present]",
        "customer_id": "[if present]",
        "incident_date": "[if present]",
        "incident_location": "[if present]",
        "total_repair_cost": "[if present]",
        "active_policy": "[true/false from KB]",
        "reported_within_thirty_days": "[calculated true/false]",
        "claim_type": "[accident/theft]",
        "coverage_type": "[from KB]",
        "deductible": "[from KB]"
    },
    "vehicle_info": {
        "make": "[if present]",
        "model": "[if present]",
        "year": "[if present]",
        "vin": "[if present]"
    },
    "documents": {
        "current_uploaded_documents": ["[list ALL uploaded files including %[1]s]"],
        "required_documents": ["[from KB based on claim type]"]
    },
    "version_summary": {
        "claim_status": "[APPROVED/PENDING/DENIED]",
        "document_analysis": "[thorough summary of findings, incident description, claim status overview]",
        "document_uploaded": "%[1]s",
        "next_steps": "[customer actions needed, remaining docs]",
        "remaining_requirements": ["[doc1]", "[doc2]"]
    }
}

NOTIFICATION
------------
Use sendNotification operation with the status and next steps.
Start with "Dear Customer"
End with "Sincerely, AnyCompany Claims Department"`, fileName, today)
}
