package joinstrategy

import (
	"context"
	"fmt"

	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
)

// clickByTextScript clicks, for each label, the first enabled button whose
// text or aria-label contains it. Missing labels are skipped.
const clickByTextScript = `(labels, firstOnly) => {
	const clicked = [];
	const buttons = () => Array.from(document.querySelectorAll('button, [role="button"]'));
	for (const label of labels) {
		const btn = buttons().find((b) => {
			const text = (b.innerText || '') + ' ' + (b.getAttribute('aria-label') || '');
			return text.includes(label) && !b.disabled;
		});
		if (btn) {
			btn.click();
			clicked.push(label);
			if (firstOnly) break;
		}
	}
	return clicked;
}`

// fillNameScript sets the guest name input if the lobby shows one
const fillNameScript = `(name, selector) => {
	const input = document.querySelector(selector);
	if (!input) return false;
	const setter = Object.getOwnPropertyDescriptor(HTMLInputElement.prototype, 'value').set;
	setter.call(input, name);
	input.dispatchEvent(new Event('input', { bubbles: true }));
	return true;
}`

// clickByText clicks buttons matching labels and returns the labels that were found
func clickByText(ctx context.Context, page gateways.Page, labels []string, firstOnly bool) ([]string, error) {
	res, err := page.Evaluate(ctx, clickByTextScript, labels, firstOnly)
	if err != nil {
		return nil, fmt.Errorf("click buttons: %w", err)
	}

	clicked := make([]string, 0, len(labels))
	for _, v := range res.Arr() {
		clicked = append(clicked, v.Str())
	}
	return clicked, nil
}

func fillName(ctx context.Context, page gateways.Page, name, selector string) (bool, error) {
	if name == "" {
		return false, nil
	}
	res, err := page.Evaluate(ctx, fillNameScript, name, selector)
	if err != nil {
		return false, fmt.Errorf("fill name: %w", err)
	}
	return res.Bool(), nil
}
