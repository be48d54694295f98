package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
)

const logTimestampLayout = "02/01/2006 15:04"

// FormatLogEntry 单条日志展示文本：[dd/mm/YYYY HH:MM - usuário] [TAG] detalhe
func FormatLogEntry(entry models.ClaimLogEntry, loc *time.Location) string {
	header := fmt.Sprintf("[%s - %s] [%s]",
		entry.CreatedAt.In(defaultLocation(loc)).Format(logTimestampLayout),
		entry.Username,
		entry.Action,
	)
	detail := strings.TrimSpace(entry.Detail)
	if detail == "" {
		return header
	}
	if strings.Contains(detail, "\n") {
		return header + "\n" + detail
	}
	return header + " " + detail
}

// FormatLogProjection 按序号拼接日志，条目之间空一行
func FormatLogProjection(entries []models.ClaimLogEntry, loc *time.Location) string {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, FormatLogEntry(entry, loc))
	}
	return strings.Join(parts, "\n\n")
}

func openedDetail(invoice string, client *models.Client, itemCount int, note string) string {
	parts := []string{
		fmt.Sprintf("NF: %s", invoice),
		fmt.Sprintf("Cliente: %s", client.DisplayLabel()),
		fmt.Sprintf("Itens: %d", itemCount),
	}
	detail := strings.Join(parts, " | ")
	if note != "" {
		detail += " " + note
	}
	return detail
}

func decisionDetail(action string, retained bool, hours *int, returnInvoice string, center *models.DistributionCenter, note string) string {
	var b strings.Builder
	if retained {
		h := 0
		if hours != nil {
			h = *hours
		}
		fmt.Fprintf(&b, "| [NF RETIDA NA CONFERÊNCIA: SIM (%dh)]", h)
	} else {
		b.WriteString("| [NF RETIDA NA CONFERÊNCIA: NÃO]")
	}
	if action == constants.ClaimDecisionReturn {
		if returnInvoice != "" {
			fmt.Fprintf(&b, " | [NFD: %s]", returnInvoice)
		}
		if center != nil {
			fmt.Fprintf(&b, " | [CD ARMAZENAGEM: %s]", center.Label())
		}
	}
	if note != "" {
		b.WriteString(" ")
		b.WriteString(note)
	}
	return b.String()
}

func liabilityLabel(party string) string {
	switch party {
	case constants.LiabilityCarrierCompany:
		return "Transportadora"
	case constants.LiabilityClient:
		return "Cliente"
	case constants.LiabilityThirdPartyCarrier:
		return "Transportadora Terceira"
	default:
		return party
	}
}

// describeLiability 责任方描述文本
func describeLiability(party string, claim *models.Claim, company config.CompanyConfig) string {
	switch party {
	case constants.LiabilityCarrierCompany:
		return company.Label()
	case constants.LiabilityClient:
		if claim.Client != nil {
			return claim.Client.DisplayLabel()
		}
		return "Cliente"
	case constants.LiabilityThirdPartyCarrier:
		if claim.Vehicle.IsThirdParty() && strings.TrimSpace(claim.Vehicle.CarrierName) != "" {
			return fmt.Sprintf("%s (%s)", claim.Vehicle.CarrierName, claim.Vehicle.CarrierCNPJ)
		}
		return "Transportadora Terceira (Dados não vinculados ao veículo)"
	default:
		return party
	}
}

func liabilityDetail(party, description, previous string) string {
	detail := fmt.Sprintf("Responsável: %s - %s", liabilityLabel(party), description)
	if previous != "" {
		detail += fmt.Sprintf(" | Anterior: %s", liabilityLabel(previous))
	}
	return detail
}

func itemsEditedDetail(removed, updated, added, skipped int) string {
	return fmt.Sprintf("Lista de produtos atualizada. Removidos: %d | Atualizados: %d | Adicionados: %d | Ignorados: %d",
		removed, updated, added, skipped)
}

func valueAdjustedDetail(previous, next *models.Money, reason string) string {
	return fmt.Sprintf("%s → %s | Motivo: %s", models.BRLLabel(previous), models.BRLLabel(next), reason)
}

func centerTransferDetail(previous, next *models.DistributionCenter, note string) string {
	from := "Nenhum"
	if previous != nil {
		from = previous.Label()
	}
	return fmt.Sprintf("CD de Origem: %s\nCD de Destino: %s\nObservação adicional:\n%s", from, next.Label(), note)
}

func photosDetail(count int) string {
	return fmt.Sprintf("%d foto(s) enviada(s)", count)
}
