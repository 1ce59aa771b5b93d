package response

import "fmt"

// The stage-output validators check the decoded shape of text produced by
// agent stages before it is trusted as a typed value. They operate on the
// generic decoding so a malformed field reads as schema_mismatch, not a
// decode panic.

// ValidateIntentSpec checks the decoded shape of an intent spec document.
func ValidateIntentSpec(value any) error {
	obj, err := asObject(value, "intent spec")
	if err != nil {
		return err
	}
	if _, err := stringField(obj, "objective"); err != nil {
		return err
	}
	reqs, err := listField(obj, "requirements")
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return fmt.Errorf("intent spec: requirements must be non-empty")
	}
	for i, raw := range reqs {
		req, err := asObject(raw, fmt.Sprintf("requirement %d", i))
		if err != nil {
			return err
		}
		for _, field := range []string{"id", "description", "verification"} {
			if _, err := stringField(req, field); err != nil {
				return fmt.Errorf("requirement %d: %w", i, err)
			}
		}
	}
	oos, err := listField(obj, "out_of_scope")
	if err != nil {
		return err
	}
	if len(oos) == 0 {
		return fmt.Errorf("intent spec: out_of_scope must be non-empty")
	}
	return nil
}

// ValidateExecutionOutput checks the decoded shape of an execution result.
func ValidateExecutionOutput(value any) error {
	obj, err := asObject(value, "execution output")
	if err != nil {
		return err
	}
	status, err := stringField(obj, "status")
	if err != nil {
		return err
	}
	switch status {
	case "completed":
		if _, err := listField(obj, "artifacts"); err != nil {
			return err
		}
	case "failed":
		errObj, err := asObject(obj["error"], "execution error")
		if err != nil {
			return err
		}
		if _, err := stringField(errObj, "type"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("execution output: status %q is not completed or failed", status)
	}
	if _, err := listField(obj, "tool_log"); err != nil {
		return err
	}
	return nil
}

// ValidateValidationReport checks the decoded shape of a validation report.
func ValidateValidationReport(value any) error {
	obj, err := asObject(value, "validation report")
	if err != nil {
		return err
	}
	verdict, err := stringField(obj, "verdict")
	if err != nil {
		return err
	}
	if verdict != "pass" && verdict != "fail" {
		return fmt.Errorf("validation report: verdict %q is not pass or fail", verdict)
	}
	if _, err := listField(obj, "requirements"); err != nil {
		return err
	}
	return nil
}

func asObject(value any, name string) (map[string]any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected object, got %T", name, value)
	}
	return obj, nil
}

func stringField(obj map[string]any, field string) (string, error) {
	raw, ok := obj[field]
	if !ok {
		return "", fmt.Errorf("missing field %q", field)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("field %q must be a non-empty string", field)
	}
	return s, nil
}

func listField(obj map[string]any, field string) ([]any, error) {
	raw, ok := obj[field]
	if !ok {
		return nil, fmt.Errorf("missing field %q", field)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q must be an array", field)
	}
	return list, nil
}
