// Package tools holds the fixed set of HR actions. The registry is handed to
// the action executor and nothing else: no other component may invoke tools.
package tools

import "fmt"

// Result is a tool's outcome; Message is always user-presentable.
type Result struct {
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

// Func executes one action with a single string parameter. The reference
// tools are deterministic and side-effect-free: they return canned results
// instead of mutating external systems.
type Func func(param string) (Result, error)

// Registry maps tool names to implementations.
type Registry map[string]Func

// DefaultRegistry returns the two supported HR actions.
func DefaultRegistry() Registry {
	return Registry{
		"create_hr_ticket":    CreateHRTicket,
		"check_leave_balance": CheckLeaveBalance,
	}
}

// CreateHRTicket files an HR support ticket for the given issue.
func CreateHRTicket(issue string) (Result, error) {
	if issue == "" {
		return Result{}, fmt.Errorf("issue description is required")
	}
	return Result{
		Message: "HR ticket created successfully. Ticket ID: TICKET-1234",
		Data: map[string]string{
			"ticket_id": "TICKET-1234",
			"status":    "created",
			"issue":     issue,
		},
	}, nil
}

// CheckLeaveBalance reports the remaining leave days for an employee.
func CheckLeaveBalance(employeeID string) (Result, error) {
	if employeeID == "" {
		return Result{}, fmt.Errorf("employee ID is required")
	}
	return Result{
		Message: fmt.Sprintf("Employee %s has 8 leave days remaining.", employeeID),
		Data: map[string]string{
			"employee_id":   employeeID,
			"leave_balance": "8",
		},
	}, nil
}
