package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/routing"
)

var (
	accent  = lipgloss.Color("#D97706")
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(dim)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle   = lipgloss.NewStyle().Foreground(danger)
)

func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return lipgloss.NewStyle().Foreground(dim).Render("(none)")
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

func yesNo(v bool) string {
	if v {
		return okStyle.Render("yes")
	}
	return failStyle.Render("no")
}

func renderItems(items []*domain.Item) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			it.ID.String(), it.Name, string(it.Type), it.Price.StringFixed(2),
			strconv.Itoa(it.Stock), yesNo(it.Availability),
		})
	}
	return renderTable([]string{"ID", "NAME", "TYPE", "PRICE", "STOCK", "AVAILABLE"}, rows)
}

func renderBundles(bundles []domain.Bundle) string {
	rows := make([][]string, 0, len(bundles))
	for _, b := range bundles {
		pricing := b.ComputePrice().StringFixed(2)
		if d, ok := b.(*domain.DiscountedBundle); ok {
			types := make([]string, len(d.RequiredItemTypes))
			for i, t := range d.RequiredItemTypes {
				types[i] = string(t)
			}
			pricing = fmt.Sprintf("-%s%% on %s", d.Discount.Shift(2).String(), strings.Join(types, "+"))
		}
		rows = append(rows, []string{b.Info().ID.String(), b.Info().Name, string(b.Kind()), pricing})
	}
	return renderTable([]string{"ID", "NAME", "KIND", "PRICING"}, rows)
}

func renderOrders(orders []*domain.Order) string {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			o.ID.String(), o.CustomerID.String(), string(o.Status),
			strconv.Itoa(len(o.Lines)), o.Total().StringFixed(2),
		})
	}
	return renderTable([]string{"ID", "CUSTOMER", "STATUS", "LINES", "TOTAL"}, rows)
}

func renderOrder(o *domain.Order) string {
	rows := make([][]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		rows = append(rows, []string{l.Name, string(l.Kind), strconv.Itoa(len(l.ItemIDs)), l.Price.StringFixed(2)})
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Order %s (%s)", o.ID, o.Status)))
	b.WriteString("\n")
	b.WriteString(renderTable([]string{"LINE", "KIND", "ITEMS", "PRICE"}, rows))
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Total: " + o.Total().StringFixed(2)))
	return b.String()
}

func renderDeliveries(deliveries []*domain.Delivery) string {
	rows := make([][]string, 0, len(deliveries))
	for _, d := range deliveries {
		delivered := "-"
		if d.DeliveryTime != nil {
			delivered = d.DeliveryTime.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			d.ID.String(), d.DriverID.String(), string(d.Status), strconv.Itoa(len(d.OrderIDs)), delivered,
		})
	}
	return renderTable([]string{"ID", "DRIVER", "STATUS", "ORDERS", "DELIVERED"}, rows)
}

func renderItinerary(it *routing.Itinerary) string {
	rows := make([][]string, len(it.Stops))
	for i, stop := range it.Stops {
		rows[i] = []string{strconv.Itoa(i + 1), stop}
	}
	return titleStyle.Render(it.Summary()) + "\n" + renderTable([]string{"#", "STOP"}, rows)
}

func renderUsers(users []*domain.User) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		detail := ""
		switch {
		case u.Customer != nil:
			detail = u.Customer.Email
		case u.Driver != nil:
			detail = u.Driver.VehicleType + ", available: " + yesNo(u.Driver.Availability)
		}
		rows = append(rows, []string{u.ID.String(), u.Username, string(u.Type), detail})
	}
	return renderTable([]string{"ID", "USERNAME", "TYPE", "DETAIL"}, rows)
}
