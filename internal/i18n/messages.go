package i18n

var messages = map[string]map[string]string{
	LocalePT: {
		"error.bad_request":                     "Requisição inválida",
		"error.unauthorized":                    "Não autenticado",
		"error.forbidden":                       "Você não tem permissão para esta ação",
		"error.not_found":                       "Registro não encontrado",
		"error.internal":                        "Erro interno do servidor",
		"error.too_many_requests":               "Muitas tentativas, aguarde %d segundos",
		"error.rate_limit_unavailable":          "Serviço de limitação indisponível",
		"error.jwt_secret_missing":              "Segredo JWT não configurado",
		"error.auth_header_missing":             "Cabeçalho Authorization ausente",
		"error.auth_header_invalid":             "Cabeçalho Authorization inválido",
		"error.token_invalid":                   "Token inválido",
		"error.token_revoked":                   "Sessão encerrada, faça login novamente",
		"error.user_disabled":                   "Usuário desativado",
		"error.access_level_denied":             "Seu nível de acesso não permite usar o sistema web",
		"error.invalid_credentials":             "Usuário ou senha inválidos",
		"error.password_invalid":                "Senha atual incorreta",
		"error.password_min_length":             "A senha deve ter pelo menos %d caracteres",
		"error.password_max_length":             "A senha deve ter no máximo %d bytes",
		"error.password_require_upper":          "A senha deve conter letra maiúscula",
		"error.password_require_lower":          "A senha deve conter letra minúscula",
		"error.password_require_number":         "A senha deve conter número",
		"error.password_require_special":        "A senha deve conter caractere especial",
		"error.id_invalid":                      "ID inválido",
		"error.login_too_many":                  "Muitas tentativas de login, aguarde %d segundos",
		"error.claim_id_invalid":                "ID de avaria inválido",
		"error.claim_not_found":                 "Avaria não encontrada",
		"error.claim_status_invalid":            "Operação não permitida no status atual da avaria",
		"error.claim_conflict":                  "A avaria foi alterada por outro usuário, recarregue e tente novamente",
		"error.claim_client_required":           "Cliente é obrigatório",
		"error.claim_invoice_required":          "Nota fiscal é obrigatória",
		"error.claim_items_required":            "Informe ao menos um produto",
		"error.claim_value_invalid":             "Valor inválido",
		"error.decision_invalid":                "Decisão inválida",
		"error.return_invoice_required":         "NFD (nota fiscal de devolução) é obrigatória para devolução",
		"error.return_vehicle_required":         "Veículo de devolução é obrigatório",
		"error.proof_required":                  "Foto do canhoto/comprovante é obrigatória",
		"error.note_required":                   "Observação não pode ser vazia",
		"error.liability_invalid":               "Responsável pelo prejuízo inválido",
		"error.liability_not_allowed":           "Prejuízo só pode ser definido para avarias com devolução concluída",
		"error.liability_already_assigned":      "Prejuízo já definido para esta avaria",
		"error.reference_not_found":             "Cadastro de referência não encontrado ou inativo",
		"error.reference_type_invalid":          "Tipo de cadastro inválido",
		"error.reference_duplicate":             "Já existe um cadastro com este identificador",
		"error.reference_required_fields":       "Campos obrigatórios não informados",
		"error.distribution_center_required":    "Centro de distribuição é obrigatório",
		"error.metrics_period_invalid":          "Período inválido (mês 1-12, ano 2000-2100)",
		"error.upload_failed":                   "Falha no envio do arquivo",
		"error.upload_too_large":                "Arquivo excede o tamanho máximo",
		"error.upload_type_invalid":             "Tipo de arquivo não permitido",
		"error.upload_too_many":                 "Quantidade de arquivos excede o limite",
		"error.photo_required":                  "Envie ao menos uma foto",
		"error.user_not_found":                  "Usuário não encontrado",
		"error.username_taken":                  "Nome de usuário já utilizado",
		"error.user_self_deactivate":            "Você não pode desativar o próprio usuário",
		"error.role_invalid":                    "Perfil inválido",
		"error.export_failed":                   "Falha ao gerar a planilha",
		"warning.distribution_center_unchanged": "O CD selecionado já é o atual, nada foi alterado",
	},
	LocaleEN: {
		"error.bad_request":                     "Bad request",
		"error.unauthorized":                    "Unauthorized",
		"error.forbidden":                       "You are not allowed to perform this action",
		"error.not_found":                       "Record not found",
		"error.internal":                        "Internal server error",
		"error.too_many_requests":               "Too many attempts, retry in %d seconds",
		"error.rate_limit_unavailable":          "Rate limit service unavailable",
		"error.jwt_secret_missing":              "JWT secret is not configured",
		"error.auth_header_missing":             "Authorization header missing",
		"error.auth_header_invalid":             "Authorization header invalid",
		"error.token_invalid":                   "Invalid token",
		"error.token_revoked":                   "Session ended, please sign in again",
		"error.user_disabled":                   "User disabled",
		"error.access_level_denied":             "Your access level does not allow the web system",
		"error.invalid_credentials":             "Invalid username or password",
		"error.password_invalid":                "Current password is incorrect",
		"error.password_min_length":             "Password must have at least %d characters",
		"error.password_max_length":             "Password must have at most %d bytes",
		"error.password_require_upper":          "Password must contain an uppercase letter",
		"error.password_require_lower":          "Password must contain a lowercase letter",
		"error.password_require_number":         "Password must contain a number",
		"error.password_require_special":        "Password must contain a special character",
		"error.id_invalid":                      "Invalid ID",
		"error.login_too_many":                  "Too many login attempts, retry in %d seconds",
		"error.claim_id_invalid":                "Invalid claim id",
		"error.claim_not_found":                 "Claim not found",
		"error.claim_status_invalid":            "Operation not allowed in the current claim status",
		"error.claim_conflict":                  "The claim was changed by someone else, reload and retry",
		"error.claim_client_required":           "Client is required",
		"error.claim_invoice_required":          "Invoice number is required",
		"error.claim_items_required":            "At least one product is required",
		"error.claim_value_invalid":             "Invalid value",
		"error.decision_invalid":                "Invalid decision",
		"error.return_invoice_required":         "Return invoice is required for the return path",
		"error.return_vehicle_required":         "Return vehicle is required",
		"error.proof_required":                  "Proof photo is required",
		"error.note_required":                   "Note cannot be empty",
		"error.liability_invalid":               "Invalid liability party",
		"error.liability_not_allowed":           "Liability can only be set on claims with a completed return",
		"error.liability_already_assigned":      "Liability already assigned for this claim",
		"error.reference_not_found":             "Reference record not found or inactive",
		"error.reference_type_invalid":          "Invalid reference type",
		"error.reference_duplicate":             "A record with this identifier already exists",
		"error.reference_required_fields":       "Required fields missing",
		"error.distribution_center_required":    "Distribution center is required",
		"error.metrics_period_invalid":          "Invalid period (month 1-12, year 2000-2100)",
		"error.upload_failed":                   "File upload failed",
		"error.upload_too_large":                "File exceeds the maximum size",
		"error.upload_type_invalid":             "File type not allowed",
		"error.upload_too_many":                 "Too many files",
		"error.photo_required":                  "Send at least one photo",
		"error.user_not_found":                  "User not found",
		"error.username_taken":                  "Username already taken",
		"error.user_self_deactivate":            "You cannot deactivate your own user",
		"error.role_invalid":                    "Invalid role",
		"error.export_failed":                   "Failed to build the spreadsheet",
		"warning.distribution_center_unchanged": "The selected distribution center is already current, nothing changed",
	},
}
